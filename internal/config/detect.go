package config

import (
	"fmt"
	"os"
)

// XSession is the resolved X display environment for the daemon, with the
// source of each value kept for startup logging.
type XSession struct {
	Display          string
	DisplaySource    string // "config", "environment", or "default"
	XAuthority       string
	XAuthoritySource string // "config", "environment", or "unset"
	SessionType      string // $XDG_SESSION_TYPE, may be empty
}

// ResolveXSession picks the display connection parameters: explicit config
// values win, then the process environment, then ":0".
func (c *Config) ResolveXSession() XSession {
	s := XSession{SessionType: os.Getenv("XDG_SESSION_TYPE")}

	switch {
	case c.Display != "":
		s.Display = c.Display
		s.DisplaySource = "config"
	case os.Getenv("DISPLAY") != "":
		s.Display = os.Getenv("DISPLAY")
		s.DisplaySource = "environment"
	default:
		s.Display = ":0"
		s.DisplaySource = "default"
	}

	switch {
	case c.XAuthority != "":
		s.XAuthority = c.XAuthority
		s.XAuthoritySource = "config"
	case os.Getenv("XAUTHORITY") != "":
		s.XAuthority = os.Getenv("XAUTHORITY")
		s.XAuthoritySource = "environment"
	default:
		s.XAuthoritySource = "unset"
	}
	return s
}

// Check returns an error for session types that cannot work and a warning
// string for ones that are merely suspicious. Wayland sessions without
// XWayland fall in the first bucket, but that only surfaces at connect time;
// here it is just a warning.
func (s XSession) Check() (warning string, err error) {
	if s.Display == "" {
		return "", fmt.Errorf("no display resolved")
	}
	if s.SessionType == "wayland" {
		return fmt.Sprintf("session type is wayland; window management requires XWayland (display %s)", s.Display), nil
	}
	return "", nil
}
