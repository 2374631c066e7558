package domain

// Settings is a sparse mapping of setting key to value.
// Keys outside the canonical set are tolerated and carried along.
type Settings map[string]string

// Get returns the value stored for key
func (s Settings) Get(k Key) (string, bool) {
	v, ok := s[string(k)]
	return v, ok
}

// Set stores a value for key
func (s Settings) Set(k Key, v string) {
	s[string(k)] = v
}

// Clone returns an independent copy. A nil receiver yields an empty map.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Standard returns only the five standard keys that carry a non-empty value
func (s Settings) Standard() Settings {
	out := make(Settings)
	for _, k := range StandardKeys {
		if v := s[string(k)]; v != "" {
			out[string(k)] = v
		}
	}
	return out
}
