package assets

import "fmt"

// Asset directories for the two faces of a page.
const (
	DescriptionsDir = "descriptions"
	PhotosDir       = "photos"
)

// ImageExtensions are probed in order when a page image is not found under
// its default extension.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp"}

// DefaultPages is the castle list shipped with the book.
var DefaultPages = []string{
	"Bedzin",
	"Bobolice",
	"Dankow",
	"Korzkiew",
	"Lipowiec",
	"Lutowiec",
	"Mirow",
	"Ogrodzieniec",
	"Ojcow",
	"Olsztyn",
	"Pieskowa_Skala",
	"Pilca",
	"Rabsztyn",
	"Ryczow",
	"Siewierz",
	"Smolen",
	"Tenczyn",
}

// Page is one castle with its two images.
type Page struct {
	Name        string
	Description string
	Photo       string
}

// Prober reports whether an asset path exists.
type Prober interface {
	Exists(name string) bool
}

// Catalog resolves the ordered page list to image paths.
type Catalog struct {
	pages []Page
}

// NewCatalog resolves every name. With a nil prober the default extensions
// are used as is: .png for descriptions, .jpg for photos.
func NewCatalog(names []string, prober Prober) (*Catalog, error) {
	c := &Catalog{pages: make([]Page, 0, len(names))}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("assets: empty page name at %d", len(c.pages))
		}
		if seen[name] {
			return nil, fmt.Errorf("assets: duplicate page %q", name)
		}
		seen[name] = true
		c.pages = append(c.pages, Page{
			Name:        name,
			Description: resolve(prober, DescriptionsDir, name, ".png"),
			Photo:       resolve(prober, PhotosDir, name, ".jpg"),
		})
	}
	return c, nil
}

func resolve(prober Prober, dir, name, ext string) string {
	def := dir + "/" + name + ext
	if prober == nil || prober.Exists(def) {
		return def
	}
	for _, e := range ImageExtensions {
		if p := dir + "/" + name + e; prober.Exists(p) {
			return p
		}
	}
	// Leave the default; loading it fails and the face stays untextured.
	return def
}

// Len returns the number of pages.
func (c *Catalog) Len() int {
	return len(c.pages)
}

// Page returns page i.
func (c *Catalog) Page(i int) Page {
	return c.pages[i]
}

// Pages returns every page in order.
func (c *Catalog) Pages() []Page {
	return append([]Page(nil), c.pages...)
}

// Name returns the name of page i.
func (c *Catalog) Name(i int) string {
	return c.pages[i].Name
}

// Description returns the description image path of page i.
func (c *Catalog) Description(i int) string {
	return c.pages[i].Description
}

// Photo returns the photo image path of page i.
func (c *Catalog) Photo(i int) string {
	return c.pages[i].Photo
}

// Missing lists the image paths that no root holds.
func (c *Catalog) Missing(prober Prober) []string {
	var out []string
	for _, p := range c.pages {
		for _, path := range []string{p.Description, p.Photo} {
			if !prober.Exists(path) {
				out = append(out, path)
			}
		}
	}
	return out
}
