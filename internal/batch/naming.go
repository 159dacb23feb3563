package batch

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// OutputName is Promo_<City>_<filename> with spaces in the city replaced.
func OutputName(city, filename string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		city = "Unknown"
	}
	city = strings.Join(strings.Fields(city), "_")
	city = strings.NewReplacer("/", "_", `\`, "_").Replace(city)
	return "Promo_" + city + "_" + filepath.Base(strings.TrimSpace(filename))
}

// Namer hands out per-row output paths that never collide within a batch:
// repeats of a name get a short unique suffix.
type Namer struct {
	Dir  string
	mu   sync.Mutex
	used map[string]bool
}

func NewNamer(dir string) *Namer {
	return &Namer{Dir: dir, used: make(map[string]bool)}
}

func (n *Namer) Path(city, filename string) string {
	name := OutputName(city, filename)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.used[name] {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + uuid.NewString()[:8] + ext
	}
	n.used[name] = true
	return filepath.Join(n.Dir, name)
}
