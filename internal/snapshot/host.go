package snapshot

import (
	"context"
	"fmt"
	"html"
	"sort"
	"sync"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
)

// HostStyleVars are the only host styles a widget inherits.
var HostStyleVars = []string{
	"--stocks-bg-color",
	"--stocks-text-color",
	"--stocks-primary-color",
	"--stocks-up-color",
	"--stocks-down-color",
	"--stocks-font-family",
}

// Container is a mount point. It holds either pre-rendered markup or one
// widget.
type Container struct {
	id string

	mu     sync.Mutex
	style  map[string]string
	markup string
	child  *Widget
}

func NewContainer(id string, style map[string]string) *Container {
	c := &Container{id: id, style: map[string]string{}}
	for k, v := range style {
		c.style[k] = v
	}
	return c
}

func (c *Container) ID() string { return c.id }

// ComputedStyle returns "" for unset properties.
func (c *Container) ComputedStyle(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.style[name]
}

func (c *Container) SetComputedStyle(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style[name] = value
}

// SetInnerHTML replaces the contents with markup, detaching any widget.
func (c *Container) SetInnerHTML(markup string) {
	c.mu.Lock()
	prev := c.child
	c.child = nil
	c.markup = markup
	c.mu.Unlock()

	if prev != nil {
		prev.Detach()
	}
}

// Replace discards the current contents and attaches w in their place.
func (c *Container) Replace(ctx context.Context, w *Widget) error {
	c.mu.Lock()
	prev := c.child
	c.child = w
	c.markup = ""
	c.mu.Unlock()

	if prev != nil && prev != w {
		prev.Detach()
	}

	w.mu.Lock()
	w.host = c
	w.mu.Unlock()

	if err := w.Attach(ctx); err != nil {
		c.mu.Lock()
		if c.child == w {
			c.child = nil
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *Container) Widget() *Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.child
}

// HTML renders the container element and its contents.
func (c *Container) HTML() (string, error) {
	return c.HTMLAs(c.id)
}

// HTMLAs renders the container under a different element id. Hosts that key
// containers internally use it to emit the id the embedder asked for.
func (c *Container) HTMLAs(id string) (string, error) {
	c.mu.Lock()
	child, markup := c.child, c.markup
	c.mu.Unlock()

	if child != nil {
		inner, err := child.HTML()
		if err != nil {
			return "", err
		}
		markup = inner
	}
	return fmt.Sprintf(`<div id="%s">%s</div>`, html.EscapeString(id), markup), nil
}

// Clear removes the contents, detaching any widget.
func (c *Container) Clear() {
	c.SetInnerHTML("")
}

// propagateHostStyles copies non-empty allow-listed variables from the host
// onto the widget's style scope. Callers hold w.mu.
func (w *Widget) propagateHostStyles() {
	if w.host == nil {
		return
	}
	for _, name := range HostStyleVars {
		if v := w.host.ComputedStyle(name); v != "" {
			w.style[name] = v
		}
	}
}

// Document is the set of mount points a host exposes.
type Document struct {
	mu         sync.RWMutex
	containers map[string]*Container
}

func NewDocument() *Document {
	return &Document{containers: map[string]*Container{}}
}

func (d *Document) Add(c *Container) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.containers[c.id]; ok {
		return errs.NewAlreadyExistsError(fmt.Sprintf("Container #%s already exists", c.id))
	}
	d.containers[c.id] = c
	return nil
}

func (d *Document) GetElementByID(id string) (*Container, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.containers[id]
	return c, ok
}

// Remove clears and drops the container. Unknown ids are ignored.
func (d *Document) Remove(id string) {
	d.mu.Lock()
	c, ok := d.containers[id]
	delete(d.containers, id)
	d.mu.Unlock()

	if ok {
		c.Clear()
	}
}

// Containers returns the mount points ordered by id.
func (d *Document) Containers() []*Container {
	d.mu.RLock()
	out := make([]*Container, 0, len(d.containers))
	for _, c := range d.containers {
		out = append(out, c)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
