package runtime

import "github.com/phalcom-lang/phalcom/pkg/object"

// bootstrap constructs the self-referential metaclass tower and the core
// module, following phalcom-core/src/vm.rs's install_core/create_class
// procedure (the authoritative later source — phalcom-vm/src/bootstrap.rs
// is an earlier draft that shares one metaclass across all primitive
// classes and is not followed here; see DESIGN.md).
//
// Order matters, per spec.md §4.4:
//  1. Allocate Metaclass with a weak self-edge placeholder for its class.
//  2. Allocate Class, class = Metaclass.
//  3. Allocate Object, class = Class.
//  4. Link Class.superclass = Object, Metaclass.superclass = Class, and
//     close Metaclass's weak self-edge.
//  5. For each primitive class, allocate a paired metaclass (class =
//     Metaclass, superclass = Class) and the class itself (class =
//     its metaclass, superclass = Object).
func (rt *Runtime) bootstrap() {
	metaclass := object.NewClass(object.NewString("Metaclass"), nil)
	metaclass.SetClassWeakSelf()

	class := object.NewClass(object.NewString("Class"), nil)
	class.SetClassStrong(metaclass)

	objectClass := object.NewClass(object.NewString("Object"), nil)
	objectClass.SetClassStrong(class)

	class.SetSuperclass(objectClass)
	metaclass.SetSuperclass(class)

	rt.ObjectClass = objectClass
	rt.ClassClass = class
	rt.MetaclassClass = metaclass

	rt.registerClass("Object", objectClass)
	rt.registerClass("Class", class)
	rt.registerClass("Metaclass", metaclass)

	rt.NumberClass = rt.newPrimitiveClass("Number")
	rt.StringClass = rt.newPrimitiveClass("String")
	rt.NilClass = rt.newPrimitiveClass("Nil")
	rt.BoolClass = rt.newPrimitiveClass("Bool")
	rt.SymbolClass = rt.newPrimitiveClass("Symbol")
	rt.MethodClass = rt.newPrimitiveClass("Method")
	rt.ModuleClass = rt.newPrimitiveClass("Module")
	rt.SystemClass = rt.newPrimitiveClass("System")

	coreSym := rt.Interner.Intern(CoreModuleName)
	rt.CoreModule = object.NewModule(coreSym)
	rt.Modules[coreSym] = rt.CoreModule

	for _, c := range []*object.Class{
		objectClass, class, metaclass,
		rt.NumberClass, rt.StringClass, rt.NilClass, rt.BoolClass,
		rt.SymbolClass, rt.MethodClass, rt.ModuleClass, rt.SystemClass,
	} {
		sym := rt.Interner.Intern(c.Name().Value())
		rt.CoreModule.Define(sym, object.ClassVal(c))
	}
	rt.CoreModule.Define(coreSym, object.ModuleVal(rt.CoreModule))
}

// newPrimitiveClass allocates a primitive class P with its own metaclass
// P.class, per spec.md §4.4 step 5.
func (rt *Runtime) newPrimitiveClass(name string) *object.Class {
	metaclass := object.NewClass(object.NewString(name+".class"), rt.ClassClass)
	metaclass.SetClassStrong(rt.MetaclassClass)

	cls := object.NewClass(object.NewString(name), rt.ObjectClass)
	cls.SetClassStrong(metaclass)

	rt.registerClass(name, cls)
	rt.registerClass(name+".class", metaclass)
	return cls
}
