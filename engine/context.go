package engine

import (
	"sort"
)

//
// Context holds the bindings of one scope.  Keys are upper case names,
// so all name handling is case insensitive
//

type Context struct {
	props map[string]Property
}

func newContext() *Context {
	return &Context{props: make(map[string]Property)}
}

func (c *Context) lookup(name string) Property {
	return c.props[normalizeName(name)]
}

func (c *Context) set(p Property) {
	c.props[normalizeName(p.Name())] = p
}

//
// Lookup finds a name in the active context, then in the saved contexts
// from the innermost caller out to the global one.  A callee therefore
// sees every binding of its callers.  The property's access stamp is
// updated
//

func (env *Environment) Lookup(name string) Property {

	p := env.active.lookup(name)

	for i := len(env.saved) - 1; p == nil && i >= 0; i-- {
		p = env.saved[i].lookup(name)
	}

	if p != nil {
		p.base().lastAccess = env.instructions
	}

	return p
}

//
// SetProperty binds p in the active context
//

func (env *Environment) SetProperty(p Property) {

	p.base().lastAccess = env.instructions
	env.active.set(p)
}

//
// SetFunction registers a native function in the active context.
// Hosts call this from InitRun, which makes the function global
//

func (env *Environment) SetFunction(name string, args []string, apply Builtin) {
	env.SetProperty(NewFunction(name, args, apply))
}

//
// pushContext saves the active context and starts an empty one.  It
// returns an error signal once maxStackDepth contexts are saved
//

func (env *Environment) pushContext() *Signal {

	if len(env.saved) >= env.maxStackDepth {
		return env.Fail(StackOverflow, env.maxStackDepth)
	}

	env.saved = append(env.saved, env.active)
	env.active = newContext()

	return nil
}

func (env *Environment) popContext() {

	n := len(env.saved)
	if n == 0 {
		return
	}

	env.active = env.saved[n-1]
	env.saved = env.saved[:n-1]
}

//
// Depth is the number of saved contexts
//

func (env *Environment) Depth() int {
	return len(env.saved)
}

//
// Variable describes one binding for display
//

type Variable struct {
	Name  string
	Value string
	Type  string
}

const variableValueWidth = 60

//
// Variables lists up to n non-function bindings of all scopes, most
// recently touched first.  A shadowed name is listed once, with the
// binding that is visible from the active scope
//

func (env *Environment) Variables(n int) []Variable {

	seen := make(map[string]bool)
	var props []Property

	scopes := append(append([]*Context(nil), env.saved...), env.active)

	for i := len(scopes) - 1; i >= 0; i-- {
		for _, p := range scopes[i].props {
			if _, isFunc := p.(*FunctionProperty); isFunc || seen[normalizeName(p.Name())] {
				continue
			}
			seen[normalizeName(p.Name())] = true
			props = append(props, p)
		}
	}

	sort.Slice(props, func(i, j int) bool {
		ai, aj := props[i].base().lastAccess, props[j].base().lastAccess
		if ai != aj {
			return ai > aj
		}
		return props[i].Name() < props[j].Name()
	})

	if n >= 0 && n < len(props) {
		props = props[:n]
	}

	vars := make([]Variable, len(props))
	for i, p := range props {
		vars[i] = Variable{
			Name:  p.Name(),
			Value: p.ValueString(variableValueWidth),
			Type:  p.TypeName(),
		}
	}

	return vars
}
