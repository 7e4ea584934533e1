// pkg/core/mods.go
package core

// LegacyMods is the mod bitmask stored in .osr files.
type LegacyMods int

const (
	ModNoFail LegacyMods = 1 << iota
	ModEasy
	ModTouchDevice
	ModHidden
	ModHardRock
	ModSuddenDeath
	ModDoubleTime
	ModRelax
	ModHalfTime
	ModNightcore
	ModFlashlight
	ModAutoplay
	ModSpunOut
	ModAutopilot
	ModPerfect
	ModKey4
	ModKey5
	ModKey6
	ModKey7
	ModKey8
	ModFadeIn
	ModRandom
	ModCinema
	ModTarget
	ModKey9
	ModKeyCoop
	ModKey1
	ModKey3
	ModKey2
	ModScoreV2
	ModMirror
)

var modAcronyms = []struct {
	mod     LegacyMods
	acronym string
}{
	{ModNoFail, "NF"}, {ModEasy, "EZ"}, {ModTouchDevice, "TD"}, {ModHidden, "HD"},
	{ModHardRock, "HR"}, {ModSuddenDeath, "SD"}, {ModDoubleTime, "DT"}, {ModRelax, "RX"},
	{ModHalfTime, "HT"}, {ModNightcore, "NC"}, {ModFlashlight, "FL"}, {ModAutoplay, "AT"},
	{ModSpunOut, "SO"}, {ModAutopilot, "AP"}, {ModPerfect, "PF"}, {ModKey4, "4K"},
	{ModKey5, "5K"}, {ModKey6, "6K"}, {ModKey7, "7K"}, {ModKey8, "8K"},
	{ModFadeIn, "FI"}, {ModRandom, "RD"}, {ModCinema, "CN"}, {ModTarget, "TP"},
	{ModKey9, "9K"}, {ModKeyCoop, "CO"}, {ModKey1, "1K"}, {ModKey3, "3K"},
	{ModKey2, "2K"}, {ModScoreV2, "V2"}, {ModMirror, "MR"},
}

func (m LegacyMods) Has(flag LegacyMods) bool { return m&flag == flag }

// Acronyms lists the set mods in bit order. Nightcore implies DoubleTime and
// Perfect implies SuddenDeath in the bitmask; only the stronger mod is listed.
func (m LegacyMods) Acronyms() []string {
	var out []string
	for _, a := range modAcronyms {
		if !m.Has(a.mod) {
			continue
		}
		if a.mod == ModDoubleTime && m.Has(ModNightcore) {
			continue
		}
		if a.mod == ModSuddenDeath && m.Has(ModPerfect) {
			continue
		}
		out = append(out, a.acronym)
	}
	return out
}

// String joins the acronyms, or returns "NM" when no mod is set.
func (m LegacyMods) String() string {
	acronyms := m.Acronyms()
	if len(acronyms) == 0 {
		return "NM"
	}
	s := ""
	for _, a := range acronyms {
		s += a
	}
	return s
}

// Mods returns the score's mods as flags.
func (s ScoreInfo) Mods() LegacyMods { return LegacyMods(s.RawMods) }
