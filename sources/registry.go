package sources

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a source driver available by the provided name.
// If Register is called twice with the same name or if driver is nil, it panics.
func Register(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if driver == nil {
		panic("sources: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("sources: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

// Open opens a row source by driver name over r.
func Open(driverName string, r io.Reader, opts *Options) (RowSource, error) {
	driversMu.RLock()
	driver, ok := drivers[driverName]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sources: unknown driver %q (forgotten import?)", driverName)
	}
	if opts == nil {
		opts = &Options{}
	}
	return driver.Open(r, opts)
}

// Drivers returns a sorted list of the names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	list := make([]string, 0, len(drivers))
	for name := range drivers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// DriverForPath picks a driver name from the file extension.
func DriverForPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv", ".txt":
		return "csv", nil
	case ".xlsx", ".xlsm":
		return "excel", nil
	case ".html", ".htm":
		return "html", nil
	default:
		return "", fmt.Errorf("sources: unsupported file type %q", ext)
	}
}
