package conf

// Aliases is an immutable, symmetric table of alternative node names.
type Aliases struct {
	m map[string]string
}

// NewAliases returns a table in which each pair's names are aliases of each
// other.
func NewAliases(pairs ...[2]string) *Aliases {
	m := make(map[string]string, 2*len(pairs))
	for _, p := range pairs {
		m[p[0]] = p[1]
		m[p[1]] = p[0]
	}

	return &Aliases{m: m}
}

// Lookup returns the alias of name.
func (a *Aliases) Lookup(name string) (string, bool) {
	if a == nil {
		return "", false
	}

	alias, ok := a.m[name]

	return alias, ok
}

// NoAliases disables alias fallback.
var NoAliases = NewAliases()

// LegacyAliases pairs the English section names with the German ones found in
// older configurations. It is used by every tree unless [WithAliases]
// overrides it.
var LegacyAliases = NewAliases(
	[2]string{"Functions", "Funktionen"},
	[2]string{"DataSources", "Datenquellen"},
	[2]string{"Dialogs", "Dialoge"},
	[2]string{"FunctionDialogs", "Funktionsdialoge"},
	[2]string{"Form", "Formular"},
	[2]string{"Fields", "Felder"},
	[2]string{"Visibility", "Sichtbarkeit"},
	[2]string{"Tabs", "Fenster"},
	[2]string{"Controls", "Eingabefelder"},
	[2]string{"TextFragments", "Textbausteine"},
)
