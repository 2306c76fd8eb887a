// Package opcode classifies decoded instruction fields into one of the
// closed set of opcode labels via the precedence cascade in spec §4.4.
// Each row is assigned the label of the first predicate it satisfies; a row
// matching none receives Generic.
package opcode

import "github.com/probeum/cairo-adapter/internal/instruction"

// Opcode is a categorical opcode label.
type Opcode uint8

const (
	Ret Opcode = iota
	AddAp
	JumpRelImm
	JumpRel
	JumpDoubleDeref
	Jump
	CallRel
	CallAbsFP
	CallAbs
	Jnz
	JnzTaken
	AssertEqImm
	AssertEqDoubleDeref
	AssertEq
	Mul
	Add
	Blake
	QM31
	Generic
)

var names = [...]string{
	"ret_opcode",
	"add_ap_opcode",
	"jump_opcode_rel_imm",
	"jump_opcode_rel",
	"jump_opcode_double_deref",
	"jump_opcode",
	"call_opcode_rel",
	"call_opcode_op_1_base_fp",
	"call_opcode",
	"jnz_opcode",
	"jnz_opcode_taken",
	"assert_eq_opcode_imm",
	"assert_eq_opcode_double_deref",
	"assert_eq_opcode",
	"mul_opcode",
	"add_opcode",
	"blake_opcode",
	"qm31_add_mul_opcode",
	"generic_opcode",
}

func (o Opcode) String() string {
	if int(o) < len(names) {
		return names[o]
	}
	return "unknown_opcode"
}

// exactlyOneOp1Base implements the spec's exactly_one_op1_base helper.
func exactlyOneOp1Base(f instruction.Fields) bool {
	n := 0
	if f.Op1Imm {
		n++
	}
	if f.Op1BaseFP {
		n++
	}
	if f.Op1BaseAP {
		n++
	}
	return n == 1
}

// immImpliesOff2One implements the spec's imm_implies_off2_1 helper.
func immImpliesOff2One(f instruction.Fields) bool {
	return !f.Op1Imm || f.Offset2 == 1
}

func isRet(f instruction.Fields) bool {
	return f.Offset0 == -2 && f.Offset1 == -1 && f.Offset2 == -1 &&
		f.DstBaseFP && f.Op0BaseFP && !f.Op1Imm && f.Op1BaseFP && !f.Op1BaseAP &&
		!f.ResAdd && !f.ResMul &&
		f.PcUpdateJump && !f.PcUpdateJumpRel && !f.PcUpdateJnz &&
		!f.ApUpdateAdd && !f.ApUpdateAdd1 &&
		!f.OpcodeCall && f.OpcodeRet && !f.OpcodeAssertEq &&
		f.OpcodeExtension == 0
}

func isAddAp(f instruction.Fields) bool {
	return f.Offset0 == -1 && f.Offset1 == -1 &&
		f.DstBaseFP && f.Op0BaseFP &&
		!f.ResAdd && !f.ResMul &&
		!f.PcUpdateJump && !f.PcUpdateJumpRel && !f.PcUpdateJnz &&
		f.ApUpdateAdd && !f.ApUpdateAdd1 &&
		!f.OpcodeCall && !f.OpcodeRet && !f.OpcodeAssertEq &&
		f.OpcodeExtension == 0 &&
		exactlyOneOp1Base(f) && immImpliesOff2One(f)
}

func jumpBase(f instruction.Fields) bool {
	return f.Offset0 == -1 && f.DstBaseFP &&
		!f.ResAdd && !f.ResMul && !f.PcUpdateJnz && !f.ApUpdateAdd &&
		!f.OpcodeCall && !f.OpcodeRet && !f.OpcodeAssertEq &&
		f.OpcodeExtension == 0
}

func isJumpRelImm(f instruction.Fields) bool {
	return jumpBase(f) &&
		f.Op1Imm && f.PcUpdateJumpRel && !f.PcUpdateJump &&
		!f.Op1BaseFP && !f.Op1BaseAP && f.Op0BaseFP &&
		f.Offset1 == -1 && f.Offset2 == 1
}

func isJumpRel(f instruction.Fields) bool {
	return jumpBase(f) &&
		!f.Op1Imm && f.PcUpdateJumpRel && !f.PcUpdateJump &&
		(f.Op1BaseFP || f.Op1BaseAP) && f.Op0BaseFP &&
		f.Offset1 == -1
}

func isJumpDoubleDeref(f instruction.Fields) bool {
	return jumpBase(f) &&
		!f.Op1Imm && !f.PcUpdateJumpRel &&
		!f.Op1BaseFP && !f.Op1BaseAP && f.PcUpdateJump
}

func isJumpAbs(f instruction.Fields) bool {
	return jumpBase(f) &&
		!f.Op1Imm && !f.PcUpdateJumpRel &&
		(f.Op1BaseFP || f.Op1BaseAP) && f.Op0BaseFP &&
		f.PcUpdateJump && f.Offset1 == -1
}

func callBase(f instruction.Fields) bool {
	return f.Offset0 == 0 && f.Offset1 == 1 &&
		!f.DstBaseFP && !f.Op0BaseFP &&
		!f.ResAdd && !f.ResMul && !f.PcUpdateJnz &&
		!f.ApUpdateAdd && !f.ApUpdateAdd1 &&
		f.OpcodeCall && !f.OpcodeRet && !f.OpcodeAssertEq &&
		f.OpcodeExtension == 0
}

func isCallRel(f instruction.Fields) bool {
	return callBase(f) &&
		f.PcUpdateJumpRel && f.Op1Imm && !f.Op1BaseFP && !f.Op1BaseAP &&
		f.Offset2 == 1 && !f.PcUpdateJump
}

func isCallAbsFP(f instruction.Fields) bool {
	return callBase(f) &&
		!f.PcUpdateJumpRel && f.Op1BaseFP && !f.Op1BaseAP && !f.Op1Imm && f.PcUpdateJump
}

func isCallAbsAP(f instruction.Fields) bool {
	return callBase(f) &&
		!f.PcUpdateJumpRel && f.Op1BaseAP && !f.Op1Imm && f.PcUpdateJump
}

func isJnz(f instruction.Fields) bool {
	return f.Offset1 == -1 && f.Offset2 == 1 &&
		f.Op0BaseFP && f.Op1Imm && !f.Op1BaseFP && !f.Op1BaseAP &&
		!f.ResAdd && !f.ResMul &&
		!f.PcUpdateJump && !f.PcUpdateJumpRel && f.PcUpdateJnz &&
		!f.ApUpdateAdd &&
		!f.OpcodeCall && !f.OpcodeRet && !f.OpcodeAssertEq &&
		f.OpcodeExtension == 0
}

func assertEqBase(f instruction.Fields) bool {
	return !f.PcUpdateJump && !f.PcUpdateJumpRel && !f.PcUpdateJnz &&
		!f.ApUpdateAdd && !f.OpcodeCall && !f.OpcodeRet && f.OpcodeAssertEq &&
		f.OpcodeExtension == 0
}

func isAssertEqImm(f instruction.Fields) bool {
	return assertEqBase(f) && !f.ResAdd && !f.ResMul &&
		f.Op1Imm && !f.Op1BaseFP && !f.Op1BaseAP && f.Offset2 == 1 &&
		f.Op0BaseFP && f.Offset1 == -1
}

func isAssertEqDoubleDeref(f instruction.Fields) bool {
	return assertEqBase(f) && !f.ResAdd && !f.ResMul &&
		!f.Op1Imm && !f.Op1BaseFP && !f.Op1BaseAP
}

func isAssertEq(f instruction.Fields) bool {
	return assertEqBase(f) && !f.ResAdd && !f.ResMul &&
		!f.Op1Imm && (f.Op1BaseFP || f.Op1BaseAP) &&
		f.Offset1 == -1 && f.Op0BaseFP
}

func isMul(f instruction.Fields) bool {
	return assertEqBase(f) && !f.ResAdd && f.ResMul &&
		exactlyOneOp1Base(f) && immImpliesOff2One(f)
}

func isAdd(f instruction.Fields) bool {
	return assertEqBase(f) && f.ResAdd && !f.ResMul &&
		exactlyOneOp1Base(f) && immImpliesOff2One(f)
}

// isBlake and isQM31 require opcode_extension values (1/2 and 3
// respectively) that a single 64-bit encoded_instruction word cannot carry
// on its own; instruction.Decode sources the field's high bits from the
// following memory limb to make them reachable (see DESIGN.md's
// opcode_extension entry).
func isBlake(f instruction.Fields) bool {
	return !f.Op1Imm && (f.Op1BaseFP != f.Op1BaseAP) &&
		!f.ResAdd && !f.ResMul &&
		!f.PcUpdateJump && !f.PcUpdateJumpRel && !f.PcUpdateJnz &&
		!f.ApUpdateAdd && !f.OpcodeCall && !f.OpcodeRet && !f.OpcodeAssertEq &&
		(f.OpcodeExtension == 1 || f.OpcodeExtension == 2)
}

func isQM31(f instruction.Fields) bool {
	return !f.PcUpdateJump && !f.PcUpdateJumpRel && !f.PcUpdateJnz &&
		!f.ApUpdateAdd && !f.OpcodeCall && !f.OpcodeRet && f.OpcodeAssertEq &&
		f.OpcodeExtension == 3 &&
		(f.ResAdd != f.ResMul) &&
		exactlyOneOp1Base(f) && immImpliesOff2One(f)
}

// cascade is the fixed, ordered predicate list of spec §4.4. The first
// predicate a row satisfies assigns its label.
var cascade = []struct {
	pred  func(instruction.Fields) bool
	label Opcode
}{
	{isRet, Ret},
	{isAddAp, AddAp},
	{isJumpRelImm, JumpRelImm},
	{isJumpRel, JumpRel},
	{isJumpDoubleDeref, JumpDoubleDeref},
	{isJumpAbs, Jump},
	{isCallRel, CallRel},
	{isCallAbsFP, CallAbsFP},
	{isCallAbsAP, CallAbs},
	{isJnz, Jnz},
	{isAssertEqImm, AssertEqImm},
	{isAssertEqDoubleDeref, AssertEqDoubleDeref},
	{isAssertEq, AssertEq},
	{isMul, Mul},
	{isAdd, Add},
	{isBlake, Blake},
	{isQM31, QM31},
}

// Classify assigns a single row's opcode label.
func Classify(f instruction.Fields) Opcode {
	for _, c := range cascade {
		if c.pred(f) {
			return c.label
		}
	}
	return Generic
}

// ClassifyColumn classifies every row of a decoded instruction table.
func ClassifyColumn(rows []instruction.Fields) []Opcode {
	out := make([]Opcode, len(rows))
	for i, f := range rows {
		out[i] = Classify(f)
	}
	return out
}
