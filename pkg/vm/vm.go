// Package vm implements the bytecode virtual machine for Phalcom.
//
// The VM is a stack-based interpreter executing the instruction set
// defined in pkg/bytecode. It's the final stage in the execution
// pipeline:
//
//	Source -> Lexer -> Parser -> AST -> Compiler -> Chunk -> VM -> Value
//
// Unlike the teacher's per-send VM, every frame here shares one value
// stack and one frame stack (spec.md §4.9's call-frame discipline): a
// frame's window starts at StackOffset, slot 0 is the receiver, slots
// 1..arity are arguments, and anything pushed above that is locals. Every
// method call (Invoke, arithmetic's message-send fallback, a getter/setter
// dispatch, an embedder's Send through Host) goes through dispatch and
// callMethod; a bytecode method gets a Frame pushed and is run to
// completion by a nested runUntil call, so each nested bytecode call also
// adds one level of Go recursion.
//
// Execution Model:
//
// Each instruction is fetched from the current frame's chunk at its IP,
// the IP is advanced, and the opcode is dispatched. Arithmetic and
// comparison opcodes fast-path when both operands are Numbers and fall
// back to an ordinary message send otherwise, exactly as spec.md §4.9
// describes.
package vm

import (
	"fmt"
	"math"

	"github.com/phalcom-lang/phalcom/pkg/bytecode"
	"github.com/phalcom-lang/phalcom/pkg/object"
	"github.com/phalcom-lang/phalcom/pkg/runtime"
	"github.com/phalcom-lang/phalcom/pkg/symbol"
	"github.com/phalcom-lang/phalcom/pkg/vmerror"
)

// VM is a single Phalcom evaluator: a Runtime (the bootstrapped object
// model and primitive library) plus the mutable stack and frame state a
// program run needs.
type VM struct {
	rt     *runtime.Runtime
	stack  []object.Value
	frames []*Frame
}

// New builds a VM over rt.
func New(rt *runtime.Runtime) *VM {
	return &VM{rt: rt}
}

// Runtime returns the VM's underlying Runtime.
func (vm *VM) Runtime() *runtime.Runtime { return vm.rt }

// object.Host implementation. Intern/Resolve/WellKnownClass delegate to
// the Runtime; Send is the one capability only an evaluator can give a
// primitive, since it requires running bytecode to completion.

func (vm *VM) Intern(name string) symbol.Symbol { return vm.rt.Intern(name) }

func (vm *VM) Resolve(sym symbol.Symbol) string { return vm.rt.Resolve(sym) }

func (vm *VM) WellKnownClass(k object.Kind) *object.Class { return vm.rt.WellKnownClass(k) }

// Send looks up selector on receiver and calls it with args, running any
// bytecode method to completion before returning. It implements
// object.Host for primitives that need to re-enter dispatch (System.print
// calling toString, for instance).
func (vm *VM) Send(receiver object.Value, selector symbol.Symbol, args []object.Value) (object.Value, error) {
	return vm.dispatch(receiver, selector, args)
}

// RunModule runs entry (a Closure already compiled against module) as the
// program, returning its result: the Value yielded by the outermost
// frame's Return once the frame stack empties.
func (vm *VM) RunModule(module *object.Module, entry *object.Closure) (object.Value, error) {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]

	if entry.Module == nil {
		entry.Module = module
	}

	vm.stack = append(vm.stack, object.Nil) // the top-level frame's "receiver" slot, unused
	vm.frames = append(vm.frames, &Frame{
		Closure:   entry,
		CtxKind:   CtxModule,
		CtxModule: module,
	})
	return vm.runUntil(0)
}

// dispatch is the single path every method call funnels through: Invoke,
// GetProperty/SetProperty, the arithmetic/comparison fallback, and
// object.Host.Send. It looks up selector on receiver, checks the found
// method's declared arity against len(args), and either calls a
// primitive directly or runs a bytecode closure to completion.
func (vm *VM) dispatch(receiver object.Value, selector symbol.Symbol, args []object.Value) (object.Value, error) {
	method := receiver.LookupMethod(vm, selector)
	if method == nil {
		return object.Nil, vmerror.Messagef("%s does not understand %q", receiver.TypeName(), vm.rt.Resolve(selector))
	}
	expected := expectedArity(method.Signature)
	if expected != len(args) {
		return object.Nil, vmerror.Arity(vm.rt.Resolve(selector), expected, len(args))
	}
	return vm.callMethod(receiver, method, args)
}

func expectedArity(sig object.Signature) int {
	switch sig.Kind {
	case object.SigGetter:
		return 0
	case object.SigSetter:
		return 1
	default:
		return sig.Arity
	}
}

// callMethod runs method against receiver/args: a primitive body is
// called directly, a bytecode body gets a fresh Frame pushed onto the
// shared stack and is run to completion via a recursive runUntil call.
func (vm *VM) callMethod(receiver object.Value, method *object.Method, args []object.Value) (object.Value, error) {
	if method.Body.IsPrimitive() {
		return method.Body.Primitive(vm, receiver, args)
	}
	closure := method.Body.Closure
	stackOffset := len(vm.stack)
	vm.stack = append(vm.stack, receiver)
	vm.stack = append(vm.stack, args...)

	ctxKind, ctxClass, ctxInstance := contextFor(receiver)
	depth := len(vm.frames)
	vm.frames = append(vm.frames, &Frame{
		Closure:     closure,
		StackOffset: stackOffset,
		CtxKind:     ctxKind,
		CtxClass:    ctxClass,
		CtxInstance: ctxInstance,
		CtxModule:   closure.Module,
	})
	return vm.runUntil(depth)
}

// runUntil executes instructions against the current top frame until the
// frame stack's length drops to targetDepth or below, which happens
// exactly once: when a Return unwinds the frame this call pushed (or, for
// the program's own top-level call with targetDepth 0, when the very last
// frame returns).
func (vm *VM) runUntil(targetDepth int) (object.Value, error) {
	for {
		frame := vm.frames[len(vm.frames)-1]
		chunk := frame.Closure.Callable.Chunk
		if frame.IP >= len(chunk.Code) {
			return object.Nil, vm.fail(fmt.Errorf("ran off the end of a chunk without a Return"))
		}
		instr := chunk.Code[frame.IP]
		frame.IP++

		switch instr.Op {

		case bytecode.Constant:
			v, err := vm.constantValue(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			vm.push(v)

		case bytecode.Nil:
			vm.push(object.Nil)

		case bytecode.True:
			vm.push(object.Bool(true))

		case bytecode.False:
			vm.push(object.Bool(false))

		case bytecode.Pop:
			vm.pop()

		case bytecode.DefineGlobal:
			name, err := vm.constantSymbol(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			val := vm.pop()
			if _, err := frame.Closure.Module.Define(name, val); err != nil {
				return object.Nil, vm.fail(err)
			}

		case bytecode.GetGlobal:
			name, err := vm.constantSymbol(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			if v, ok := frame.Closure.Module.Get(name); ok {
				vm.push(v)
			} else if v, ok := vm.rt.CoreModule.Get(name); ok {
				vm.push(v)
			} else {
				return object.Nil, vm.fail(vmerror.UndefinedVariable(vm.rt.Resolve(name)))
			}

		case bytecode.SetGlobal:
			name, err := vm.constantSymbol(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			slot, ok := frame.Closure.Module.SlotFor(name)
			if !ok {
				return object.Nil, vm.fail(vmerror.UndefinedVariable(vm.rt.Resolve(name)))
			}
			if err := frame.Closure.Module.SetSlot(slot, vm.peek()); err != nil {
				return object.Nil, vm.fail(err)
			}

		case bytecode.GetLocal:
			idx := frame.StackOffset + int(instr.A)
			if idx < 0 || idx >= len(vm.stack) {
				return object.Nil, vm.fail(fmt.Errorf("local slot %d out of bounds", instr.A))
			}
			vm.push(vm.stack[idx])

		case bytecode.SetLocal:
			idx := frame.StackOffset + int(instr.A)
			if idx < 0 || idx >= len(vm.stack) {
				return object.Nil, vm.fail(fmt.Errorf("local slot %d out of bounds", instr.A))
			}
			vm.stack[idx] = vm.peek()

		case bytecode.GetSelf:
			vm.push(vm.stack[frame.StackOffset])

		case bytecode.GetField:
			name, err := vm.constantSymbol(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			inst, ok := vm.stack[frame.StackOffset].AsInstance()
			if !ok {
				return object.Nil, vm.fail(vmerror.Messagef("only instances have fields"))
			}
			vm.push(inst.GetField(name))

		case bytecode.SetField:
			name, err := vm.constantSymbol(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			inst, ok := vm.stack[frame.StackOffset].AsInstance()
			if !ok {
				return object.Nil, vm.fail(vmerror.Messagef("only instances have fields"))
			}
			inst.SetField(name, vm.peek())

		case bytecode.GetProperty:
			name, err := vm.constantSymbol(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			recv := vm.pop()
			if inst, ok := recv.AsInstance(); ok {
				if v, ok := inst.Fields().Get(name); ok {
					vm.push(v)
					break
				}
			}
			result, err := vm.dispatch(recv, name, nil)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			vm.push(result)

		case bytecode.SetProperty:
			name, err := vm.constantSymbol(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			val := vm.pop()
			recv := vm.pop()
			if inst, ok := recv.AsInstance(); ok {
				inst.SetField(name, val)
				vm.push(val)
				break
			}
			setter := vm.rt.Interner.Intern(vm.rt.Resolve(name) + "=(_)")
			if _, err := vm.dispatch(recv, setter, []object.Value{val}); err != nil {
				return object.Nil, vm.fail(err)
			}
			vm.push(val)

		case bytecode.Class:
			name, err := vm.constantString(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			superVal := vm.pop()
			superClass, ok := superVal.AsClass()
			if !ok {
				return object.Nil, vm.fail(vmerror.Type("Class", superVal.TypeName()))
			}
			cls := vm.rt.CreateClass(name, superClass)
			vm.push(object.ClassVal(cls))

		case bytecode.Method:
			methodVal := vm.pop()
			m, ok := methodVal.AsMethod()
			if !ok {
				return object.Nil, vm.fail(fmt.Errorf("Method opcode needs a Method value on the stack, got %s", methodVal.TypeName()))
			}
			clsVal := vm.peek()
			cls, ok := clsVal.AsClass()
			if !ok {
				return object.Nil, vm.fail(vmerror.Type("Class", clsVal.TypeName()))
			}
			target := cls
			if instr.B != 0 {
				target = cls.Class()
			}
			target.AddMethod(m.Signature.Selector, m)

		case bytecode.Invoke:
			selector, err := vm.constantSymbol(chunk, instr.A)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			arity := int(instr.B)
			if len(vm.stack) < arity+1 {
				return object.Nil, vm.fail(fmt.Errorf("stack underflow on invoke"))
			}
			recvIdx := len(vm.stack) - 1 - arity
			recv := vm.stack[recvIdx]
			args := append([]object.Value(nil), vm.stack[recvIdx+1:]...)
			result, err := vm.dispatch(recv, selector, args)
			if err != nil {
				return object.Nil, vm.fail(err)
			}
			vm.stack = vm.stack[:recvIdx]
			vm.push(result)

		case bytecode.Return:
			val := vm.pop()
			offset := frame.StackOffset
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.stack = vm.stack[:offset]
			if len(vm.frames) <= targetDepth {
				return val, nil
			}
			vm.push(val)

		case bytecode.Add, bytecode.Subtract, bytecode.Multiply, bytecode.Divide, bytecode.Modulo:
			if err := vm.binaryArith(instr.Op); err != nil {
				return object.Nil, vm.fail(err)
			}

		case bytecode.Equal:
			b, a := vm.pop(), vm.pop()
			vm.push(object.Bool(a.Equal(b)))

		case bytecode.NotEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(object.Bool(!a.Equal(b)))

		case bytecode.Less, bytecode.LessEqual, bytecode.Greater, bytecode.GreaterEqual:
			if err := vm.binaryCompare(instr.Op); err != nil {
				return object.Nil, vm.fail(err)
			}

		case bytecode.And:
			b, a := vm.pop(), vm.pop()
			ab, aok := a.AsBool()
			bb, bok := b.AsBool()
			if !aok || !bok {
				return object.Nil, vm.fail(vmerror.Type("Bool", mismatchedType(a, aok, b)))
			}
			vm.push(object.Bool(ab && bb))

		case bytecode.Or:
			b, a := vm.pop(), vm.pop()
			ab, aok := a.AsBool()
			bb, bok := b.AsBool()
			if !aok || !bok {
				return object.Nil, vm.fail(vmerror.Type("Bool", mismatchedType(a, aok, b)))
			}
			vm.push(object.Bool(ab || bb))

		case bytecode.Negate:
			v := vm.pop()
			n, ok := v.AsNumber()
			if !ok {
				return object.Nil, vm.fail(vmerror.Type("Number", v.TypeName()))
			}
			vm.push(object.Number(-n))

		case bytecode.Not:
			v := vm.pop()
			b, ok := v.AsBool()
			if !ok {
				return object.Nil, vm.fail(vmerror.Type("Bool", v.TypeName()))
			}
			vm.push(object.Bool(!b))

		default:
			return object.Nil, vm.fail(fmt.Errorf("unknown opcode %v", instr.Op))
		}
	}
}

func mismatchedType(a object.Value, aok bool, b object.Value) string {
	if !aok {
		return a.TypeName()
	}
	return b.TypeName()
}

// binaryArith fast-paths Number/Number arithmetic and falls back to an
// ordinary message send otherwise, per spec.md §4.9.
func (vm *VM) binaryArith(op bytecode.Opcode) error {
	b := vm.pop()
	a := vm.pop()
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			switch op {
			case bytecode.Add:
				vm.push(object.Number(an + bn))
			case bytecode.Subtract:
				vm.push(object.Number(an - bn))
			case bytecode.Multiply:
				vm.push(object.Number(an * bn))
			case bytecode.Divide:
				if bn == 0 {
					return vmerror.ZeroDivision()
				}
				vm.push(object.Number(an / bn))
			case bytecode.Modulo:
				if bn == 0 {
					return vmerror.ZeroDivision()
				}
				vm.push(object.Number(math.Mod(an, bn)))
			}
			return nil
		}
	}
	selector := vm.rt.Interner.Intern(arithSelector(op))
	result, err := vm.dispatch(a, selector, []object.Value{b})
	if err != nil {
		return err
	}
	vm.push(result)
	return nil
}

func arithSelector(op bytecode.Opcode) string {
	switch op {
	case bytecode.Add:
		return "+(_)"
	case bytecode.Subtract:
		return "-(_)"
	case bytecode.Multiply:
		return "*(_)"
	case bytecode.Divide:
		return "/(_)"
	case bytecode.Modulo:
		return "%(_)"
	default:
		return ""
	}
}

// binaryCompare fast-paths Number/Number ordering and falls back to an
// ordinary message send otherwise.
func (vm *VM) binaryCompare(op bytecode.Opcode) error {
	b := vm.pop()
	a := vm.pop()
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			var result bool
			switch op {
			case bytecode.Less:
				result = an < bn
			case bytecode.LessEqual:
				result = an <= bn
			case bytecode.Greater:
				result = an > bn
			case bytecode.GreaterEqual:
				result = an >= bn
			}
			vm.push(object.Bool(result))
			return nil
		}
	}
	selector := vm.rt.Interner.Intern(compareSelector(op))
	result, err := vm.dispatch(a, selector, []object.Value{b})
	if err != nil {
		return err
	}
	vm.push(result)
	return nil
}

func compareSelector(op bytecode.Opcode) string {
	switch op {
	case bytecode.Less:
		return "<(_)"
	case bytecode.LessEqual:
		return "<=(_)"
	case bytecode.Greater:
		return ">(_)"
	case bytecode.GreaterEqual:
		return ">=(_)"
	default:
		return ""
	}
}

func (vm *VM) push(v object.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() object.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek() object.Value { return vm.stack[len(vm.stack)-1] }

func (vm *VM) constantValue(chunk *bytecode.Chunk, ix uint16) (object.Value, error) {
	c, err := constantAt(chunk, ix)
	if err != nil {
		return object.Nil, err
	}
	switch v := c.(type) {
	case float64:
		return object.Number(v), nil
	case string:
		return object.Str(object.NewString(v)), nil
	case symbol.Symbol:
		return object.Sym(v), nil
	case *object.String:
		return object.Str(v), nil
	case *object.Method:
		return object.MethodVal(v), nil
	case object.Value:
		return v, nil
	default:
		return object.Nil, fmt.Errorf("unsupported constant type %T at index %d", c, ix)
	}
}

func (vm *VM) constantSymbol(chunk *bytecode.Chunk, ix uint16) (symbol.Symbol, error) {
	c, err := constantAt(chunk, ix)
	if err != nil {
		return 0, err
	}
	switch v := c.(type) {
	case symbol.Symbol:
		return v, nil
	case string:
		return vm.rt.Interner.Intern(v), nil
	case *object.String:
		return vm.rt.Interner.Intern(v.Value()), nil
	default:
		return 0, fmt.Errorf("constant at index %d is not symbol-like: %T", ix, c)
	}
}

func (vm *VM) constantString(chunk *bytecode.Chunk, ix uint16) (string, error) {
	c, err := constantAt(chunk, ix)
	if err != nil {
		return "", err
	}
	switch v := c.(type) {
	case string:
		return v, nil
	case *object.String:
		return v.Value(), nil
	default:
		return "", fmt.Errorf("constant at index %d is not a string: %T", ix, c)
	}
}

func constantAt(chunk *bytecode.Chunk, ix uint16) (interface{}, error) {
	if int(ix) >= len(chunk.Constants) {
		return nil, fmt.Errorf("constant index %d out of range (pool has %d entries)", ix, len(chunk.Constants))
	}
	return chunk.Constants[int(ix)], nil
}
