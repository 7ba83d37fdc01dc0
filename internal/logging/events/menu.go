package events

import "github.com/atomicstack/sview/internal/logging"

type MenuTracer struct{}

var Menu = MenuTracer{}

func (MenuTracer) Toggle(name string, visible bool) {
	logging.Trace("menu.toggle", map[string]interface{}{"name": name, "visible": visible})
}

func (MenuTracer) Dispatch(dest, identity, option string) {
	logging.Trace("menu.dispatch", map[string]interface{}{"dest": dest, "identity": identity, "option": option})
}

func (MenuTracer) UnknownDestination(dest int, option string) {
	logging.Diagnostic("unknown menu destination", "dest", dest, "option", option)
}
