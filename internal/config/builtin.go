package config

// BuiltinZones returns the built-in zone library.
//
// These are always available without being defined in YAML. A user zone with
// the same key replaces the builtin; new keys extend the set. Tile order is
// the cycle order: activating a zone repeatedly steps through its tiles.
func BuiltinZones() []ZoneDef {
	return []ZoneDef{
		{
			Key:    "left",
			Hotkey: "mod4-h",
			Tiles:  []string{"left-half", "33%", "66%"},
		},
		{
			Key:    "right",
			Hotkey: "mod4-l",
			Tiles:  []string{"right-half", "-1,1:-1,-1"},
		},
		{
			Key:    "top",
			Hotkey: "mod4-k",
			Tiles:  []string{"top-half", "1,1:-1,1"},
		},
		{
			Key:    "bottom",
			Hotkey: "mod4-j",
			Tiles:  []string{"bottom-half", "1,-1:-1,-1"},
		},
		{
			Key:    "full",
			Hotkey: "mod4-f",
			Tiles:  []string{"full"},
		},
	}
}
