package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resultscrawler/internal/domain"
)

// fakeTree is an in-memory TreeStore that flattens every write into
// path -> value leaves and records operation order.
type fakeTree struct {
	leaves  map[string]any
	ops     []string
	pushSeq int
	failAll bool
}

func newFakeTree() *fakeTree {
	return &fakeTree{leaves: map[string]any{}}
}

func (f *fakeTree) Update(ctx context.Context, path string, fields map[string]any) error {
	if f.failAll {
		return errors.New("tree store down")
	}
	f.ops = append(f.ops, "update:"+path)
	for k, v := range fields {
		f.leaves[path+"/"+k] = v
	}
	return nil
}

func (f *fakeTree) Set(ctx context.Context, path string, value any) error {
	if f.failAll {
		return errors.New("tree store down")
	}
	f.ops = append(f.ops, "set:"+path)
	for existing := range f.leaves {
		if existing == path || strings.HasPrefix(existing, path+"/") {
			delete(f.leaves, existing)
		}
	}
	f.leaves[path] = value
	return nil
}

func (f *fakeTree) Push(ctx context.Context, path string, value any) (string, error) {
	if f.failAll {
		return "", errors.New("tree store down")
	}
	f.pushSeq++
	key := fmt.Sprintf("key%04d", f.pushSeq)
	f.ops = append(f.ops, "push:"+path)
	f.leaves[path+"/"+key] = value
	return key, nil
}

func (f *fakeTree) keysUnder(prefix string) []string {
	var keys []string
	for k := range f.leaves {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// fakeBlobs is a BlobStore that can be told to fail from a given upload on.
type fakeBlobs struct {
	uploaded  []string
	failAfter int // fail every upload once this many succeeded; -1 never fails
}

func (f *fakeBlobs) Upload(ctx context.Context, path, contentType string, data []byte) error {
	if f.failAfter >= 0 && len(f.uploaded) >= f.failAfter {
		return errors.New("quota exceeded")
	}
	f.uploaded = append(f.uploaded, path)
	return nil
}

func record(roll string) domain.PersonRecord {
	return domain.PersonRecord{
		InstitutionCode: "164",
		InstitutionName: "University School of Information Technology",
		Batch:           "2018",
		ProgrammeCode:   "027",
		ProgrammeName:   "Bachelor of Computer Applications",
		RollNum:         roll,
		StudentName:     "Student " + roll,
		Photo:           []byte("jpeg-bytes-" + roll),
		Results: []domain.ResultRecord{{
			ExaminationName: "BCA FIRST SEMESTER",
			Semester:        "01",
			Marks:           map[string]any{"101": map[string]any{"minor": 20.0, "major": 55.0}},
		}},
	}
}

var provenance = domain.Entry{
	Date:  "12/01/2021",
	Title: "Result of BCA First Semester",
	URL:   "http://example.org/results/bca1.pdf",
}
