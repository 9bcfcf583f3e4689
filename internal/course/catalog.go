package course

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
	"gopkg.in/yaml.v3"
)

// Catalog courses decoded from the yaml files of a directory, one course per file
type Catalog struct {
	dir       string
	validator validate.Validator
	mu        sync.RWMutex
	courses   map[string]*domain.Course
	order     []string
}

var _ BaseCatalog = &Catalog{}

// NewCatalog create an empty catalog bound to dir, call Reload to read it
func NewCatalog(dir string, validator validate.Validator) *Catalog {
	return &Catalog{
		dir:       dir,
		validator: validator,
		courses:   make(map[string]*domain.Course),
	}
}

// LoadCatalog create a catalog and read dir
func LoadCatalog(dir string, validator validate.Validator) (*Catalog, error) {
	c := NewCatalog(dir, validator)
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload read every *.yaml and *.yml file again, the catalog is left untouched on error
func (c *Catalog) Reload() error {
	files, err := ioutil.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", c.dir, err)
	}

	courses := make(map[string]*domain.Course)
	var order []string
	for _, fi := range files {
		ext := strings.ToLower(filepath.Ext(fi.Name()))
		if fi.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(c.dir, fi.Name())
		course, err := c.decodeFile(path)
		if err != nil {
			return err
		}
		if _, ok := courses[course.ID]; ok {
			return fmt.Errorf("%s: duplicated course id %q: %w", path, course.ID, domain.ErrInvalidCourse)
		}
		courses[course.ID] = course
		order = append(order, course.ID)
	}
	sort.Strings(order)

	c.mu.Lock()
	c.courses = courses
	c.order = order
	c.mu.Unlock()
	return nil
}

func (c *Catalog) decodeFile(path string) (*domain.Course, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	course := new(domain.Course)
	if err := dec.Decode(course); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	Prepare(course)
	if err := ValidateCourse(c.validator, course); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return course, nil
}

// Get course by id
func (c *Catalog) Get(id string) (*domain.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	course, ok := c.courses[id]
	return course, ok
}

// List courses in id order
func (c *Catalog) List() []*domain.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*domain.Course, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.courses[id])
	}
	return result
}
