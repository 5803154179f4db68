//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce sync.Once
	initErr  error
	owner    *x11Owner
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		owner, initErr = newX11Owner()
	})
	return initErr
}

func writeFormat(f format, data []byte) error {
	return owner.own(f, data)
}

// x11Owner holds the CLIPBOARD selection on a hidden window and answers
// conversion requests until another client takes ownership.
type x11Owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet

	mu     sync.RWMutex
	format format
	data   []byte
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	utf8      xproto.Atom
	textPlain xproto.Atom
	png       xproto.Atom
}

func newX11Owner() (*x11Owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		conn.Close()
		return nil, err
	}
	o := &x11Owner{conn: conn, window: window}
	names := map[string]*xproto.Atom{
		"CLIPBOARD":                &o.atoms.clipboard,
		"TARGETS":                  &o.atoms.targets,
		"UTF8_STRING":              &o.atoms.utf8,
		"text/plain;charset=utf-8": &o.atoms.textPlain,
		"image/png":                &o.atoms.png,
	}
	for name, dst := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("intern %s: %w", name, err)
		}
		*dst = reply.Atom
	}
	go o.serve()
	return o, nil
}

func (o *x11Owner) own(f format, data []byte) error {
	o.mu.Lock()
	o.format = f
	o.data = append([]byte(nil), data...)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *x11Owner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.data = nil
			o.mu.Unlock()
		}
	}
}

// offered lists the targets the held data can be converted to.
func (o *x11Owner) offered(f format) []xproto.Atom {
	if f == formatPNG {
		return []xproto.Atom{o.atoms.png}
	}
	return []xproto.Atom{o.atoms.utf8, xproto.AtomString, o.atoms.textPlain}
}

func (o *x11Owner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	o.mu.RLock()
	f, data := o.format, o.data
	o.mu.RUnlock()

	switch {
	case len(data) == 0:
		property = xproto.AtomNone
	case e.Target == o.atoms.targets:
		targets := append([]xproto.Atom{o.atoms.targets}, o.offered(f)...)
		buf := make([]byte, 4*len(targets))
		for i, atom := range targets {
			xgb.Put32(buf[i*4:], uint32(atom))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(targets)), buf)
	default:
		served := false
		for _, atom := range o.offered(f) {
			if atom == e.Target {
				xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, e.Target, 8, uint32(len(data)), data)
				served = true
				break
			}
		}
		if !served {
			property = xproto.AtomNone
		}
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}
