package vm

import (
	"bytes"
	"strings"
	"testing"
)

// compileOnly compiles source into a fresh context without caring about
// the execution result. Tests that inspect bytecode read the chunk
// afterwards.
func compileOnly(t *testing.T, input string) *VM {
	t.Helper()
	v := New()
	v.SetOutput(&bytes.Buffer{})
	v.SetDiag(&bytes.Buffer{})
	if !v.Eval(input) {
		t.Fatalf("eval failed for input %q", input)
	}
	return v
}

// opsOf decodes the chunk into the opcode sequence, skipping operands.
func opsOf(t *testing.T, c *Chunk) []Opcode {
	t.Helper()
	var ops []Opcode
	offset := 0
	for offset < c.Len() {
		op := Opcode(c.Code[offset])
		ops = append(ops, op)
		offset++
		switch op {
		case OP_JMP, OP_JMP_TRUE, OP_JMP_FALSE, OP_CALL:
			offset += 3
		case OP_INVOKE:
			offset += 2
		case OP_PUSH_INT8:
			offset++
		case OP_PUSH_INT16:
			offset += 2
		case OP_PUSH_NUMBER:
			offset += 8
		case OP_PUSH_STRING, OP_PUSH_NAME, OP_PUSH_REFNAME:
			offset += 1 + int(c.Code[offset])
		case OP_PUSH_STRING_LONG:
			offset += 4 + int(c.ReadUint32(offset))
		case OP_END:
			// toplevel fragments pad the END with a patch slot
			offset += 3
		}
	}
	return ops
}

func hasOp(ops []Opcode, want Opcode) bool {
	for _, op := range ops {
		if op == want {
			return true
		}
	}
	return false
}

func TestIntegerEncodings(t *testing.T) {
	tests := []struct {
		input string
		op    Opcode
	}{
		{"0", OP_PUSH_INT8},
		{"1", OP_PUSH_INT8},
		{"-1", OP_PUSH_INT8},
		{"127", OP_PUSH_INT8},
		{"-128", OP_PUSH_INT8},
		{"128", OP_PUSH_INT16},
		{"-129", OP_PUSH_INT16},
		{"32767", OP_PUSH_INT16},
		{"-32768", OP_PUSH_INT16},
		{"32768", OP_PUSH_NUMBER},
		{"-32769", OP_PUSH_NUMBER},
		{"1.5", OP_PUSH_NUMBER},
		{"3.14159", OP_PUSH_NUMBER},
		{"100000", OP_PUSH_NUMBER},
	}
	for _, tt := range tests {
		v := compileOnly(t, tt.input)
		got := Opcode(v.Chunk().Code[0])
		if got != tt.op {
			t.Errorf("input %q: opcode is %s, want %s", tt.input, got, tt.op)
		}
	}
}

func TestIntegerOperandRoundTrip(t *testing.T) {
	v := compileOnly(t, "-7")
	c := v.Chunk()
	if Opcode(c.Code[0]) != OP_PUSH_INT8 {
		t.Fatalf("opcode is %s, want PUSH_INT8", Opcode(c.Code[0]))
	}
	if got := c.ReadInt8(1); got != -7 {
		t.Errorf("operand is %d, want -7", got)
	}

	v = compileOnly(t, "-300")
	c = v.Chunk()
	if Opcode(c.Code[0]) != OP_PUSH_INT16 {
		t.Fatalf("opcode is %s, want PUSH_INT16", Opcode(c.Code[0]))
	}
	if got := c.ReadInt16(1); got != -300 {
		t.Errorf("operand is %d, want -300", got)
	}

	v = compileOnly(t, "2.5")
	c = v.Chunk()
	if Opcode(c.Code[0]) != OP_PUSH_NUMBER {
		t.Fatalf("opcode is %s, want PUSH_NUMBER", Opcode(c.Code[0]))
	}
	if got := c.ReadFloat(1); got != 2.5 {
		t.Errorf("operand is %g, want 2.5", got)
	}
}

func TestStringEncodings(t *testing.T) {
	v := compileOnly(t, `"hello"`)
	c := v.Chunk()
	if Opcode(c.Code[0]) != OP_PUSH_STRING {
		t.Fatalf("opcode is %s, want PUSH_STRING", Opcode(c.Code[0]))
	}
	if n := int(c.Code[1]); n != 5 {
		t.Errorf("length byte is %d, want 5", n)
	}
	if got := string(c.Code[2:7]); got != "hello" {
		t.Errorf("payload is %q, want %q", got, "hello")
	}

	long := strings.Repeat("x", 300)
	v = compileOnly(t, `"`+long+`"`)
	c = v.Chunk()
	if Opcode(c.Code[0]) != OP_PUSH_STRING_LONG {
		t.Fatalf("opcode is %s, want PUSH_STRING_LONG", Opcode(c.Code[0]))
	}
	if n := c.ReadUint32(1); n != 300 {
		t.Errorf("length is %d, want 300", n)
	}
}

func TestBoundaryStringLength(t *testing.T) {
	// exactly 255 bytes still fits the short form
	v := compileOnly(t, `"`+strings.Repeat("a", 255)+`"`)
	if got := Opcode(v.Chunk().Code[0]); got != OP_PUSH_STRING {
		t.Errorf("255-byte string compiled to %s, want PUSH_STRING", got)
	}
	v = compileOnly(t, `"`+strings.Repeat("a", 256)+`"`)
	if got := Opcode(v.Chunk().Code[0]); got != OP_PUSH_STRING_LONG {
		t.Errorf("256-byte string compiled to %s, want PUSH_STRING_LONG", got)
	}
}

func TestPickMoveFusion(t *testing.T) {
	tests := []struct {
		input string
		op    Opcode
	}{
		{"1 2 3 1 pick", OP_PICK1},
		{"1 2 3 2 pick", OP_PICK2},
		{"1 2 3 3 pick", OP_PICK3},
		{"1 2 3 4 5 4 pick", OP_PICK4},
		{"1 2 3 4 5 5 pick", OP_PICK5},
		{"1 2 3 1 move", OP_MOVE1},
		{"1 2 3 2 move", OP_MOVE2},
		{"1 2 3 3 move", OP_MOVE3},
		{"1 2 3 4 5 4 move", OP_MOVE4},
		{"1 2 3 4 5 5 move", OP_MOVE5},
	}
	for _, tt := range tests {
		v := compileOnly(t, tt.input)
		ops := opsOf(t, v.Chunk())
		if !hasOp(ops, tt.op) {
			t.Errorf("input %q: %s not emitted, got %v", tt.input, tt.op, ops)
		}
		if hasOp(ops, OP_PICKN) || hasOp(ops, OP_MOVEN) {
			t.Errorf("input %q: generic pick/move emitted alongside fused form", tt.input)
		}
	}
}

func TestPickMoveFallback(t *testing.T) {
	v := compileOnly(t, "1 2 3 4 5 6 7 6 pick")
	ops := opsOf(t, v.Chunk())
	if !hasOp(ops, OP_PICKN) {
		t.Errorf("depth 6 pick did not use the generic opcode, got %v", ops)
	}

	v = compileOnly(t, "1 2 3 1.5 drop")
	ops = opsOf(t, v.Chunk())
	for _, op := range ops {
		if op >= OP_PICK1 && op <= OP_MOVEN {
			t.Errorf("non-integral operand fused into %s", op)
		}
	}
}

func TestFusionDoesNotSwallowOtherNames(t *testing.T) {
	// "1 dup" must keep the literal push, not fuse it away
	v := compileOnly(t, "1 dup")
	ops := opsOf(t, v.Chunk())
	if !hasOp(ops, OP_PUSH_INT8) || !hasOp(ops, OP_DUP) {
		t.Errorf("got %v, want PUSH_INT8 then DUP", ops)
	}
	if top, ok := v.Top(); !ok || top.AsNumber() != 1 {
		t.Errorf("stack top after 1 dup is wrong")
	}
	if v.Depth() != 2 {
		t.Errorf("depth is %d, want 2", v.Depth())
	}
}

func TestDirectOpcodeAliases(t *testing.T) {
	tests := []struct {
		input string
		op    Opcode
	}{
		{"1 2 +", OP_PLUS},
		{"1 2 -", OP_MINUS},
		{"1 2 *", OP_MUL},
		{"1 2 /", OP_DIV},
		{"1 2 %", OP_MOD},
		{"1 2 <", OP_LT},
		{"1 2 <=", OP_LTE},
		{"1 2 =", OP_EQ},
		{"1 dup", OP_DUP},
		{"1 2 swap", OP_SWAP},
		{"1 2 3 rot", OP_ROT},
		{"[ ] 1 apush", OP_APUSH},
	}
	for _, tt := range tests {
		v := compileOnly(t, tt.input)
		ops := opsOf(t, v.Chunk())
		if !hasOp(ops, tt.op) {
			t.Errorf("input %q: %s not emitted inline, got %v", tt.input, tt.op, ops)
		}
		if hasOp(ops, OP_INVOKE) {
			t.Errorf("input %q: INVOKE emitted for a direct opcode alias", tt.input)
		}
	}
}

func TestFnNativesCompileToInvoke(t *testing.T) {
	v := compileOnly(t, `"ab" len`)
	ops := opsOf(t, v.Chunk())
	if !hasOp(ops, OP_INVOKE) {
		t.Errorf("len did not compile to INVOKE, got %v", ops)
	}
}

func TestDefinitionsCompileToCall(t *testing.T) {
	v := compileOnly(t, ": double 2 * ; 4 double")
	ops := opsOf(t, v.Chunk())
	if !hasOp(ops, OP_CALL) {
		t.Errorf("definition call did not compile to CALL, got %v", ops)
	}
	if !hasOp(ops, OP_RETURN) {
		t.Errorf("definition body has no RETURN, got %v", ops)
	}
	if top, ok := v.Top(); !ok || top.AsNumber() != 8 {
		t.Errorf("4 double left the wrong result")
	}
}

func TestToplevelEndsWithEnd(t *testing.T) {
	v := compileOnly(t, "1 2 +")
	c := v.Chunk()
	// END plus its 3-byte patch slot close every toplevel fragment
	if Opcode(c.Code[c.Len()-4]) != OP_END {
		t.Errorf("fragment does not end with a patchable END")
	}
}

func TestContinuationPatchesPreviousEnd(t *testing.T) {
	v := compileOnly(t, "1")
	c := v.Chunk()
	endAt := c.Len() - 4
	if Opcode(c.Code[endAt]) != OP_END {
		t.Fatalf("first fragment does not end with END")
	}
	if !v.Eval("2") {
		t.Fatalf("second eval failed")
	}
	if Opcode(c.Code[endAt]) != OP_JMP {
		t.Errorf("old END was not patched to JMP, got %s", Opcode(c.Code[endAt]))
	}
	if got := c.ReadAddr(endAt + 1); got != uint32(endAt+4) {
		t.Errorf("patched jump targets %d, want %d", got, endAt+4)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"]", "unexpected"},
		{"}", "unexpected"},
		{",", "unexpected"},
		{";", "unexpected ';'"},
		{": ;", "expected a name after ':'"},
		{":", "expected a name after ':'"},
		{": f 1", "unterminated definition"},
		{"1 if 2", "unterminated conditional"},
		{"1 if 2 else 3", "unterminated conditional"},
		{"else", "'else' without 'if'"},
		{"[ 1 2", "unterminated array literal"},
		{"{ 1 }", "needs key-value pairs"},
		{`"abc`, "unterminated string"},
		{"no-such-word", "Undefined name: no-such-word"},
		{": f : g ; ;", "unexpected ':'"},
	}
	for _, tt := range tests {
		v := New()
		var diag bytes.Buffer
		v.SetOutput(&bytes.Buffer{})
		v.SetDiag(&diag)
		if v.Eval(tt.input) {
			t.Errorf("input %q: eval succeeded, want compile error", tt.input)
			continue
		}
		if !strings.Contains(diag.String(), tt.want) {
			t.Errorf("input %q: diagnostic %q does not contain %q", tt.input, diag.String(), tt.want)
		}
	}
}

func TestCompileErrorTruncatesChunk(t *testing.T) {
	v := compileOnly(t, "1 2 +")
	before := v.Chunk().Len()
	v.SetDiag(&bytes.Buffer{})
	if v.Eval("no-such-word") {
		t.Fatalf("eval of undefined name succeeded")
	}
	if got := v.Chunk().Len(); got != before {
		t.Errorf("chunk length is %d after failed eval, want %d", got, before)
	}
	// the context must stay usable
	if !v.Eval("4 +") {
		t.Fatalf("followup eval failed")
	}
	if top, ok := v.Top(); !ok || top.AsNumber() != 7 {
		t.Errorf("followup eval computed the wrong result")
	}
}

func TestArrayLiteralQuotesNames(t *testing.T) {
	v := compileOnly(t, "[ dup * ]")
	ops := opsOf(t, v.Chunk())
	if !hasOp(ops, OP_PUSH_NAME) {
		t.Errorf("names in array literals must compile to PUSH_NAME, got %v", ops)
	}
	if hasOp(ops, OP_DUP) || hasOp(ops, OP_MUL) {
		t.Errorf("names in array literals must not execute, got %v", ops)
	}
}

func TestHashmapLiteralEmitsHmput(t *testing.T) {
	v := compileOnly(t, `{ "a" 1, "b" 2 }`)
	ops := opsOf(t, v.Chunk())
	count := 0
	for _, op := range ops {
		if op == OP_HMPUT {
			count++
		}
	}
	if count != 2 {
		t.Errorf("two pairs emitted %d HMPUTs, want 2", count)
	}
}

func TestConditionalJumps(t *testing.T) {
	v := compileOnly(t, "true if 1 else 2 then")
	ops := opsOf(t, v.Chunk())
	if !hasOp(ops, OP_JMP_FALSE) {
		t.Errorf("if did not emit JMP_FALSE, got %v", ops)
	}
	if !hasOp(ops, OP_JMP) {
		t.Errorf("else did not emit a skip JMP, got %v", ops)
	}
	if top, ok := v.Top(); !ok || top.AsNumber() != 1 {
		t.Errorf("true branch did not run")
	}

	v = compileOnly(t, "false if 1 then")
	if v.Depth() != 0 {
		t.Errorf("false if without else left %d values", v.Depth())
	}
}

func TestDisassemblerOutput(t *testing.T) {
	v := compileOnly(t, `1 "hi" dup`)
	var buf bytes.Buffer
	v.Chunk().Disassemble(&buf)
	out := buf.String()
	for _, want := range []string{"PUSH_INT8", "PUSH_STRING", "DUP", "END", `"hi"`} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "0x000000") {
		t.Errorf("disassembly missing offset column:\n%s", out)
	}
}

func TestNameTooLong(t *testing.T) {
	v := New()
	var diag bytes.Buffer
	v.SetDiag(&diag)
	long := strings.Repeat("n", 300)
	if v.Eval("[ " + long + " ]") {
		t.Fatalf("quoting a 300-byte name succeeded")
	}
	if !strings.Contains(diag.String(), "name too long") {
		t.Errorf("diagnostic %q does not mention name length", diag.String())
	}
}
