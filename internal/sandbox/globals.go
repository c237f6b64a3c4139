package sandbox

import (
	"io"
	"strings"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/CodePlayground/backend/internal/sandbox/guard"
)

var consoleLevels = []string{"log", "info", "debug", "warn", "error"}

// setupGlobals configures the scope a run executes in
func setupGlobals(vm *goja.Runtime, out io.Writer, state *guard.State) error {
	// Host module objects do not exist here
	for _, name := range []string{"process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	if err := vm.Set("print", makePrintFunc(out)); err != nil {
		return err
	}

	console := vm.NewObject()
	for _, level := range consoleLevels {
		if err := console.Set(level, makePrintFunc(out)); err != nil {
			return err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}

	if err := vm.Set("require", makeRequireFunc(vm)); err != nil {
		return err
	}

	// Timers never fire
	noop := func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	}
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := vm.Set(name, noop); err != nil {
			return err
		}
	}

	return bindGuard(vm, state)
}

// bindGuard installs the guard function and the counter-state handle as
// read-only, non-configurable globals.
func bindGuard(vm *goja.Runtime, state *guard.State) error {
	global := vm.GlobalObject()

	fn := vm.ToValue(makeGuardFunc(vm))
	if err := global.DefineDataProperty(guard.FuncName, fn, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE); err != nil {
		return err
	}

	handle := vm.ToValue(guard.NewHandle(state))
	return global.DefineDataProperty(guard.StateName, handle, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
}

// makeGuardFunc creates the function injected loop bodies call as
// __loopGuard(site, __loopState, limit).
func makeGuardFunc(vm *goja.Runtime) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		state, ok := guard.StateOf(call.Argument(1).Export())
		if !ok {
			panic(vm.NewTypeError("%s: invalid guard state", guard.FuncName))
		}

		site := int(call.Argument(0).ToInteger())
		limit := int(call.Argument(2).ToInteger())
		if err := state.Check(site, limit); err != nil {
			// Uncatchable; the VM stops before the next instruction
			vm.Interrupt(err)
		}
		return goja.Undefined()
	}
}

// makePrintFunc writes its arguments joined by spaces plus a newline
func makePrintFunc(out io.Writer) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		_, _ = io.WriteString(out, strings.Join(parts, " ")+"\n")
		return goja.Undefined()
	}
}

// makeRequireFunc creates a require that rejects every module
func makeRequireFunc(vm *goja.Runtime) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		err := vm.NewGoError(&ModuleNotFoundError{Name: call.Argument(0).String()})
		_ = err.Set("name", moduleNotFoundName)
		panic(err)
	}
}
