package location

import "net/url"

// Persisted is a History whose every change is also saved to a File. A nil
// file keeps it in memory only.
type Persisted struct {
	*History
	file *File
}

// NewPersisted wraps h.
func NewPersisted(h *History, file *File) *Persisted {
	return &Persisted{History: h, file: file}
}

// Replace overwrites the current entry and saves it.
func (p *Persisted) Replace(v url.Values) error {
	if err := p.History.Replace(v); err != nil {
		return err
	}
	return p.save()
}

// Push records a new entry and saves it.
func (p *Persisted) Push(v url.Values) error {
	if err := p.History.Push(v); err != nil {
		return err
	}
	return p.save()
}

// Back moves to the previous entry and saves it as current.
func (p *Persisted) Back() (url.Values, bool, error) {
	v, ok := p.History.Back()
	if !ok {
		return nil, false, nil
	}
	return v, true, p.save()
}

// Forward moves to the next entry and saves it as current.
func (p *Persisted) Forward() (url.Values, bool, error) {
	v, ok := p.History.Forward()
	if !ok {
		return nil, false, nil
	}
	return v, true, p.save()
}

// Activate saves the current entry so the file names this view as current.
func (p *Persisted) Activate() error {
	return p.save()
}

func (p *Persisted) save() error {
	if p.file == nil {
		return nil
	}
	return p.file.Save(p.View(), p.History.Values())
}
