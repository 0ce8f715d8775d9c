package note

import "sort"

// Cache is the transient copy of the notes mapping. It is two index-aligned
// lists: ids[i] is the key of texts[i].
type Cache struct {
	ids   []string
	texts []string
}

// Replace swaps the cache contents for the mapping in value. The value must be
// a mapping of string to string; anything else leaves the cache untouched and
// Replace reports false.
func (c *Cache) Replace(value any) bool {
	mapping, ok := asStringMap(value)
	if !ok {
		return false
	}

	ids := make([]string, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	texts := make([]string, len(ids))
	for i, id := range ids {
		texts[i] = mapping[id]
	}

	c.ids = ids
	c.texts = texts
	return true
}

// Len returns the number of cached notes.
func (c *Cache) Len() int {
	return len(c.ids)
}

// ID returns the note id at index i.
func (c *Cache) ID(i int) (string, bool) {
	if i < 0 || i >= len(c.ids) {
		return "", false
	}
	return c.ids[i], true
}

// Text returns the note text at index i.
func (c *Cache) Text(i int) (string, bool) {
	if i < 0 || i >= len(c.texts) {
		return "", false
	}
	return c.texts[i], true
}

// Index returns the position of id, or -1.
func (c *Cache) Index(id string) int {
	for i, cur := range c.ids {
		if cur == id {
			return i
		}
	}
	return -1
}

// Notes returns a copy of the cache in display order.
func (c *Cache) Notes() []Note {
	out := make([]Note, len(c.ids))
	for i := range c.ids {
		out[i] = Note{ID: c.ids[i], Text: c.texts[i]}
	}
	return out
}

func asStringMap(value any) (map[string]string, bool) {
	switch v := value.(type) {
	case map[string]string:
		if v == nil {
			return nil, false
		}
		return v, true
	case map[string]any:
		if v == nil {
			return nil, false
		}
		out := make(map[string]string, len(v))
		for k, raw := range v {
			s, ok := raw.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}
