package enkelvm

type OpCode uint8

const (
	OpExit OpCode = iota
	OpAllocFrameU8
	OpPushVarU8
	OpPushU8
	OpPushF32
	OpPushTrue
	OpPushFalse
	OpPushNull
	OpPushFuncRefU32
	OpPopVarU8
	OpPopDispose
	OpCall
	OpCallExternU16
	OpRet
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpGt
	OpLt
	OpGte
	OpLte
	OpEq
	OpNeq
	OpJumpU32
	OpJumpIfTrueU32
	OpJumpIfFalseU32
	numOpCodes
)

type opInfo struct {
	name   string
	length int
}

var opInfos = [numOpCodes]opInfo{
	OpExit:           {"exit", 1},
	OpAllocFrameU8:   {"alloc_frame_u8", 2},
	OpPushVarU8:      {"push_var_u8", 2},
	OpPushU8:         {"push_u8", 2},
	OpPushF32:        {"push_f32", 5},
	OpPushTrue:       {"push_true", 1},
	OpPushFalse:      {"push_false", 1},
	OpPushNull:       {"push_null", 1},
	OpPushFuncRefU32: {"push_func_ref_u32", 5},
	OpPopVarU8:       {"pop_var_u8", 2},
	OpPopDispose:     {"pop_dispose", 1},
	OpCall:           {"call", 1},
	OpCallExternU16:  {"call_extern_u16", 3},
	OpRet:            {"ret", 1},
	OpAdd:            {"add", 1},
	OpSub:            {"sub", 1},
	OpMul:            {"mul", 1},
	OpDiv:            {"div", 1},
	OpGt:             {"gt", 1},
	OpLt:             {"lt", 1},
	OpGte:            {"gte", 1},
	OpLte:            {"lte", 1},
	OpEq:             {"eq", 1},
	OpNeq:            {"neq", 1},
	OpJumpU32:        {"jump_u32", 5},
	OpJumpIfTrueU32:  {"jump_if_true_u32", 5},
	OpJumpIfFalseU32: {"jump_if_false_u32", 5},
}

func (o OpCode) Valid() bool {
	return o < numOpCodes
}

func (o OpCode) String() string {
	if !o.Valid() {
		return "invalid"
	}
	return opInfos[o].name
}

// Len is the total instruction length including the opcode byte.
func (o OpCode) Len() int {
	if !o.Valid() {
		return 0
	}
	return opInfos[o].length
}
