// Package hotkeys binds the configured zone shortcuts as global X11 key
// grabs on the root window.
package hotkeys

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/gridzones/internal/config"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Actions is the engine surface hotkeys drive.
type Actions interface {
	Activate(zoneKey string) error
	FocusCycle(zoneKey string) error
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	log     *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler bound to a display connection.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, actions Actions, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    root,
		actions: actions,
		log:     log,
	}
}

// Bind registers an activation grab for every zone with a hotkey and a
// focus-cycle grab for every zone with a focus hotkey. A sequence that fails
// to grab is logged and skipped so one bad binding cannot take down the
// rest. Returns the number of bindings made.
func (h *Handler) Bind(cfg *config.Config) int {
	bound := 0
	for _, def := range cfg.Zones {
		key := def.Key
		if def.Hotkey != "" {
			err := h.RegisterFunc(def.Hotkey, func() {
				if err := h.actions.Activate(key); err != nil {
					h.log.Warn("activate hotkey failed", "zone", key, "error", err)
				}
			})
			if err != nil {
				h.log.Warn("hotkey grab failed",
					"zone", key, "sequence", def.Hotkey, "error", err)
			} else {
				bound++
			}
		}
		if def.FocusHotkey != "" {
			err := h.RegisterFunc(def.FocusHotkey, func() {
				if err := h.actions.FocusCycle(key); err != nil {
					h.log.Warn("focus hotkey failed", "zone", key, "error", err)
				}
			})
			if err != nil {
				h.log.Warn("focus hotkey grab failed",
					"zone", key, "sequence", def.FocusHotkey, "error", err)
			} else {
				bound++
			}
		}
	}
	h.log.Info("hotkeys bound", "count", bound)
	return bound
}

// Rebind drops every grab and binds the new configuration's shortcuts. Used
// on config reload.
func (h *Handler) Rebind(cfg *config.Config) int {
	keybind.Detach(h.xu, h.root)
	return h.Bind(cfg)
}

// RegisterFunc grabs a key sequence and invokes callback on each press.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	press := keybind.KeyPressFun(func(*xgbutil.XUtil, xevent.KeyPressEvent) {
		callback()
	})
	return press.Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes grabs fire regardless of lock-key state. A grab
// only matches an exact modifier chord, so every combination of CapsLock,
// NumLock, and ScrollLock has to be listed.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	locks := []uint16{uint16(xproto.ModMaskLock)}
	for _, keysym := range []string{"Num_Lock", "Scroll_Lock"} {
		mask := lockMask(xu, keysym)
		if mask != 0 && !containsMask(locks, mask) {
			locks = append(locks, mask)
		}
	}

	// Subset 0 is the bare chord with no locks held.
	var ignore []uint16
	for subset := 0; subset < 1<<len(locks); subset++ {
		var mask uint16
		for i, lock := range locks {
			if subset&(1<<i) != 0 {
				mask |= lock
			}
		}
		if !containsMask(ignore, mask) {
			ignore = append(ignore, mask)
		}
	}

	xevent.IgnoreMods = ignore
}

func containsMask(masks []uint16, mask uint16) bool {
	for _, m := range masks {
		if m == mask {
			return true
		}
	}
	return false
}

// lockMask resolves the modifier bit the keymap assigns to a lock keysym.
func lockMask(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, code := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, code); mask != 0 {
			return mask
		}
	}
	return 0
}
