package dom

// Event types dispatched by the document.
const (
	Click    = "click"
	KeyDown  = "keydown"
	Submit   = "submit"
	FocusIn  = "focusin"
	FocusOut = "focusout"
)

// Event is a user interaction targeted at an element. Every event bubbles
// from its target up to the document root.
type Event struct {
	Type string
	// Key names the key for keydown events: a single character for
	// printable keys, or a name such as "Backspace" or "Enter".
	Key string

	Target        *Element
	CurrentTarget *Element

	defaultPrevented bool
	stopped          bool
}

// PreventDefault cancels the default action of the event.
func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors.
func (ev *Event) StopPropagation() { ev.stopped = true }

// SetHandler installs fn as the single on<typ> handler of e, replacing any
// previous one. A nil fn clears the slot.
func (e *Element) SetHandler(typ string, fn Listener) {
	slots := e.doc.handlers[e.node]
	if slots == nil {
		if fn == nil {
			return
		}
		slots = make(map[string]Listener)
		e.doc.handlers[e.node] = slots
	}
	if fn == nil {
		delete(slots, typ)
		return
	}
	slots[typ] = fn
}

// AddEventListener appends fn to the listeners of typ on e.
func (e *Element) AddEventListener(typ string, fn Listener) {
	slots := e.doc.listeners[e.node]
	if slots == nil {
		slots = make(map[string][]Listener)
		e.doc.listeners[e.node] = slots
	}
	slots[typ] = append(slots[typ], fn)
}

// ListenerCount returns how many listeners, including the on<typ> handler,
// are registered for typ on e.
func (e *Element) ListenerCount(typ string) int {
	n := len(e.doc.listeners[e.node][typ])
	if _, ok := e.doc.handlers[e.node][typ]; ok {
		n++
	}
	return n
}

// Dispatch fires an event of type typ at target and bubbles it to the root.
// It returns the event so callers can check whether the default action was
// prevented.
func (d *Document) Dispatch(target *Element, typ, key string) *Event {
	ev := &Event{Type: typ, Key: key, Target: target}

	var path []*Element
	for n := target.node; n != nil; n = n.Parent {
		path = append(path, d.wrap(n))
	}

	for _, el := range path {
		ev.CurrentTarget = el
		if fn, ok := d.handlers[el.node][typ]; ok {
			fn(ev)
		}
		// Copy so listeners added during dispatch do not fire for this event.
		fns := append([]Listener(nil), d.listeners[el.node][typ]...)
		for _, fn := range fns {
			fn(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return ev
}
