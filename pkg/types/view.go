package types

import "fmt"

// View defines the gallery layouts
type View string

const (
	ViewThumbs    View = "thumbs"
	ViewFilmstrip View = "filmstrip"
	ViewFiles     View = "files"
)

// Views lists every layout in display order
var Views = []View{ViewThumbs, ViewFilmstrip, ViewFiles}

func (v View) String() string {
	return string(v)
}

// Valid reports whether v is one of the known layouts
func (v View) Valid() bool {
	switch v {
	case ViewThumbs, ViewFilmstrip, ViewFiles:
		return true
	}
	return false
}

// ParseView converts a config or state value into a View
func ParseView(s string) (View, error) {
	v := View(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown view %q", s)
	}
	return v, nil
}

// UnmarshalText rejects unknown layouts when decoding config or state files
func (v *View) UnmarshalText(text []byte) error {
	parsed, err := ParseView(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (v View) MarshalText() ([]byte, error) {
	return []byte(v), nil
}
