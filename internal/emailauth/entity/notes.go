package entity

// Note keys written on the auth session by this step.
const (
	NoteEmailCode = "emailCode"
	NoteURLKey    = "email-authenticator-url-key"
)

// Notes is the string note store attached to an auth session.
type Notes map[string]string

func (n Notes) Get(key string) (string, bool) {
	v, ok := n[key]
	return v, ok
}

func (n Notes) Set(key, value string) {
	n[key] = value
}

func (n Notes) Remove(key string) {
	delete(n, key)
}

// Clone returns an independent copy.
func (n Notes) Clone() Notes {
	out := make(Notes, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}
