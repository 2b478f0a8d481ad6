package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/funvibe/kokoki/internal/lexer"
	"github.com/funvibe/kokoki/internal/token"
)

// compileMode selects the terminator a compile loop stops on and what it
// emits when it does. Array and hashmap literals do not use a mode; they
// have their own loops because their contents are quoted data.
type compileMode int

const (
	modeToplevel   compileMode = iota // stops on EOF, emits END
	modeEval                          // stops on EOF, emits RETURN
	modeDefinition                    // stops on ";", emits RETURN
	modeIfBranch                      // stops on "else" or "then", emits nothing
	modeElseBranch                    // stops on "then", emits nothing
)

// Compiler is a single-pass token-to-bytecode translator over a shared
// chunk. It is re-entrant: conditionals and definitions recurse into
// nested compile loops on the same token stream.
type Compiler struct {
	vm  *VM
	lex *lexer.Lexer

	// pending holds a token read ahead by the pick/move peephole that
	// turned out not to complete the pattern.
	pending *token.Token

	// term records which name terminated the last branch compile, so
	// the conditional emitter can tell "else" from "then".
	term string
}

func newCompiler(vm *VM, lex *lexer.Lexer) *Compiler {
	return &Compiler{vm: vm, lex: lex}
}

func (c *Compiler) next() token.Token {
	if c.pending != nil {
		tok := *c.pending
		c.pending = nil
		return tok
	}
	return c.lex.NextToken()
}

func (c *Compiler) here() uint32 {
	return uint32(c.vm.chunk.Len())
}

// compileProgram compiles a toplevel fragment. The chunk ends with END
// followed by three spare bytes, so a later evaluation can overwrite the
// END with a JMP to its own first instruction.
func (c *Compiler) compileProgram() error {
	if c.vm.chunk.Len() >= MaxAddr {
		return errors.New("code space exhausted")
	}
	if err := c.compile(modeToplevel); err != nil {
		return err
	}
	c.vm.chunk.WriteAddr(0)
	return nil
}

func (c *Compiler) compile(mode compileMode) error {
	for {
		tok := c.next()
		switch tok.Type {
		case token.EOF:
			switch mode {
			case modeToplevel:
				c.vm.chunk.WriteOp(OP_END)
				return nil
			case modeEval:
				c.vm.chunk.WriteOp(OP_RETURN)
				return nil
			case modeDefinition:
				return errors.New("unterminated definition, expected ';'")
			default:
				return errors.New("unterminated conditional, expected 'then'")
			}

		case token.ILLEGAL:
			return errors.New(tok.Literal)

		case token.NUMBER:
			c.compileNumber(tok)

		case token.STRING:
			c.vm.emitString(tok.Literal)

		case token.NAME:
			switch tok.Literal {
			case "if":
				if err := c.compileIf(); err != nil {
					return err
				}
			case "else":
				if mode == modeIfBranch {
					c.term = "else"
					return nil
				}
				return fmt.Errorf("'else' without 'if' at line %d, column %d", tok.Line, tok.Column)
			case "then":
				if mode == modeIfBranch || mode == modeElseBranch {
					c.term = "then"
					return nil
				}
				return fmt.Errorf("'then' without 'if' at line %d, column %d", tok.Line, tok.Column)
			default:
				if err := c.vm.emitNameCall(tok.Literal); err != nil {
					return err
				}
			}

		case token.REFNAME:
			if err := c.vm.emitRefName(tok.Literal); err != nil {
				return err
			}

		case token.TRUE:
			c.vm.chunk.WriteOp(OP_PUSH_TRUE)
		case token.FALSE:
			c.vm.chunk.WriteOp(OP_PUSH_FALSE)
		case token.NIL:
			c.vm.chunk.WriteOp(OP_PUSH_NIL)

		case token.DEFSTART:
			if mode != modeToplevel && mode != modeEval {
				return fmt.Errorf("unexpected ':' at line %d, column %d", tok.Line, tok.Column)
			}
			if err := c.compileDefinition(tok); err != nil {
				return err
			}

		case token.DEFEND:
			if mode == modeDefinition {
				c.vm.chunk.WriteOp(OP_RETURN)
				return nil
			}
			return fmt.Errorf("unexpected ';' at line %d, column %d", tok.Line, tok.Column)

		case token.ARRAYSTART:
			if err := c.compileArrayLiteral(tok); err != nil {
				return err
			}
		case token.HASHSTART:
			if err := c.compileHashmapLiteral(tok); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unexpected '%s' at line %d, column %d", tok.Literal, tok.Line, tok.Column)
		}
	}
}

// compileNumber emits a number literal, fusing an integral 1..5 with an
// immediately following pick or move into the dedicated opcode. A
// non-matching lookahead token is kept for the next loop iteration.
func (c *Compiler) compileNumber(tok token.Token) {
	n := tok.Number
	if k := int(n); n == float64(k) && k >= 1 && k <= 5 {
		next := c.next()
		if next.Type == token.NAME && next.Literal == "pick" {
			c.vm.chunk.WriteOp(OP_PICK1 + Opcode(k-1))
			return
		}
		if next.Type == token.NAME && next.Literal == "move" {
			c.vm.chunk.WriteOp(OP_MOVE1 + Opcode(k-1))
			return
		}
		c.vm.emitNumber(n)
		c.pending = &next
		return
	}
	c.vm.emitNumber(n)
}

// compileIf emits the jump skeleton of a conditional:
//
//	cond if A then        JMP_FALSE after, A
//	cond if A else B then JMP_FALSE elseStart, A, JMP after, B
func (c *Compiler) compileIf() error {
	falseJump := c.reserveJump()
	if err := c.compile(modeIfBranch); err != nil {
		return err
	}
	if c.term == "else" {
		endJump := c.reserveJump()
		c.patchJump(falseJump, OP_JMP_FALSE, c.here())
		if err := c.compile(modeElseBranch); err != nil {
			return err
		}
		c.patchJump(endJump, OP_JMP, c.here())
		return nil
	}
	c.patchJump(falseJump, OP_JMP_FALSE, c.here())
	return nil
}

// compileDefinition compiles ": name body ;". The body is guarded by a
// JMP so straight-line execution skips it; the name binds to the body's
// start address only after the body compiled, so definitions must come
// in textual order and cannot call themselves.
func (c *Compiler) compileDefinition(def token.Token) error {
	name := c.next()
	if name.Type == token.ILLEGAL {
		return errors.New(name.Literal)
	}
	if name.Type != token.NAME {
		return fmt.Errorf("expected a name after ':' at line %d, column %d", def.Line, def.Column)
	}
	skip := c.reserveJump()
	body := c.here()
	if err := c.compile(modeDefinition); err != nil {
		return err
	}
	c.patchJump(skip, OP_JMP, c.here())
	c.vm.names.Put(NameVal(name.Literal), CodeAddrVal(body))
	return nil
}

// compileArrayLiteral compiles "[ ... ]" into code that builds the array
// at runtime: PUSH_ARRAY, then one quoted element plus APUSH per item.
// Commas are optional separators.
func (c *Compiler) compileArrayLiteral(start token.Token) error {
	c.vm.chunk.WriteOp(OP_PUSH_ARRAY)
	for {
		tok := c.next()
		switch tok.Type {
		case token.ARRAYEND:
			return nil
		case token.COMMA:
			continue
		case token.EOF:
			return fmt.Errorf("unterminated array literal opened at line %d, column %d", start.Line, start.Column)
		case token.ILLEGAL:
			return errors.New(tok.Literal)
		}
		if err := c.compileQuoted(tok); err != nil {
			return err
		}
		c.vm.chunk.WriteOp(OP_APUSH)
	}
}

// compileHashmapLiteral compiles "{ k v , k v }". Elements pair up
// positionally; every second one emits HMPUT. An odd element count at
// the closing brace is an error.
func (c *Compiler) compileHashmapLiteral(start token.Token) error {
	c.vm.chunk.WriteOp(OP_PUSH_HASHMAP)
	count := 0
	for {
		tok := c.next()
		switch tok.Type {
		case token.HASHEND:
			if count%2 != 0 {
				return fmt.Errorf("hashmap literal opened at line %d, column %d needs key-value pairs", start.Line, start.Column)
			}
			return nil
		case token.COMMA:
			continue
		case token.EOF:
			return fmt.Errorf("unterminated hashmap literal opened at line %d, column %d", start.Line, start.Column)
		case token.ILLEGAL:
			return errors.New(tok.Literal)
		}
		if err := c.compileQuoted(tok); err != nil {
			return err
		}
		count++
		if count%2 == 0 {
			c.vm.chunk.WriteOp(OP_HMPUT)
		}
	}
}

// compileQuoted emits one element of an array or hashmap literal. Names
// are data here, not calls; nested literals recurse.
func (c *Compiler) compileQuoted(tok token.Token) error {
	switch tok.Type {
	case token.NUMBER:
		c.vm.emitNumber(tok.Number)
		return nil
	case token.STRING:
		c.vm.emitString(tok.Literal)
		return nil
	case token.NAME:
		return c.vm.emitName(tok.Literal)
	case token.REFNAME:
		return c.vm.emitRefName(tok.Literal)
	case token.TRUE:
		c.vm.chunk.WriteOp(OP_PUSH_TRUE)
		return nil
	case token.FALSE:
		c.vm.chunk.WriteOp(OP_PUSH_FALSE)
		return nil
	case token.NIL:
		c.vm.chunk.WriteOp(OP_PUSH_NIL)
		return nil
	case token.ARRAYSTART:
		return c.compileArrayLiteral(tok)
	case token.HASHSTART:
		return c.compileHashmapLiteral(tok)
	default:
		return fmt.Errorf("unexpected '%s' inside a literal at line %d, column %d", tok.Literal, tok.Line, tok.Column)
	}
}

// reserveJump writes four placeholder bytes for a jump opcode plus its
// address and returns their offset for patchJump.
func (c *Compiler) reserveJump() int {
	pos := c.vm.chunk.Len()
	c.vm.chunk.WriteBytes([]byte{0, 0, 0, 0})
	return pos
}

func (c *Compiler) patchJump(pos int, op Opcode, addr uint32) {
	c.vm.chunk.Code[pos] = byte(op)
	c.vm.chunk.PatchAddr(pos+1, addr)
}

// Emit helpers shared by the compiler and the runtime block compiler.

// emitNumber picks the narrowest integer push that reproduces n exactly
// and falls back to the full float encoding.
func (vm *VM) emitNumber(n float64) {
	if n == math.Trunc(n) && n >= math.MinInt16 && n <= math.MaxInt16 {
		i := int16(n)
		if i >= math.MinInt8 && i <= math.MaxInt8 {
			vm.chunk.WriteOp(OP_PUSH_INT8)
			vm.chunk.WriteInt8(int8(i))
			return
		}
		vm.chunk.WriteOp(OP_PUSH_INT16)
		vm.chunk.WriteInt16(i)
		return
	}
	vm.chunk.WriteOp(OP_PUSH_NUMBER)
	vm.chunk.WriteFloat(n)
}

func (vm *VM) emitString(s string) {
	if len(s) <= math.MaxUint8 {
		vm.chunk.WriteOp(OP_PUSH_STRING)
		vm.chunk.Write(byte(len(s)))
	} else {
		vm.chunk.WriteOp(OP_PUSH_STRING_LONG)
		vm.chunk.WriteUint32(uint32(len(s)))
	}
	vm.chunk.WriteBytes([]byte(s))
}

func (vm *VM) emitName(s string) error {
	if len(s) > math.MaxUint8 {
		return fmt.Errorf("name too long (%d bytes)", len(s))
	}
	vm.chunk.WriteOp(OP_PUSH_NAME)
	vm.chunk.Write(byte(len(s)))
	vm.chunk.WriteBytes([]byte(s))
	return nil
}

func (vm *VM) emitRefName(s string) error {
	if len(s) > math.MaxUint8 {
		return fmt.Errorf("ref name too long (%d bytes)", len(s))
	}
	vm.chunk.WriteOp(OP_PUSH_REFNAME)
	vm.chunk.Write(byte(len(s)))
	vm.chunk.WriteBytes([]byte(s))
	return nil
}

// emitNameCall resolves a name at compile time: a bound definition
// compiles to CALL, a native to its direct opcode or INVOKE, anything
// else is a compile error.
func (vm *VM) emitNameCall(name string) error {
	if bound := vm.names.Get(NameVal(name)); bound.Type == ValCodeAddr {
		vm.chunk.WriteOp(OP_CALL)
		vm.chunk.WriteAddr(bound.AsCodeAddr())
		return nil
	}
	if idx, ok := vm.nativeIdx[name]; ok {
		entry := vm.natives[idx]
		if entry.Direct {
			vm.chunk.WriteOp(entry.Op)
		} else {
			vm.chunk.WriteOp(OP_INVOKE)
			vm.chunk.WriteIndex(idx)
		}
		return nil
	}
	return fmt.Errorf("Undefined name: %s", name)
}

// compileFragment appends source as a RETURN-terminated fragment past
// the current END and returns its start address. On failure the chunk is
// restored and nothing was emitted.
func (vm *VM) compileFragment(source string) (uint32, error) {
	start := vm.chunk.Len()
	c := newCompiler(vm, lexer.New(source))
	if err := c.compile(modeEval); err != nil {
		vm.chunk.Truncate(start)
		return 0, err
	}
	return uint32(start), nil
}
