// Package shm provides named, mmap-backed shared memory regions,
// grounded on the create/open/mmap dance shm_manager.c performs over
// shm_open and on the raw-fd shared memory handle style of the corpus's
// gosuda-HQQ shm package.
package shm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/joacoabraldes/chompchamps/pkg/ipcerr"
	"github.com/joacoabraldes/chompchamps/pkg/sema"
)

// dir is where POSIX shared memory objects live on Linux; shm_open(3) is
// itself implemented in glibc as open() against this tmpfs mount, so
// naming regions this way is wire-compatible with the C original.
const dir = "/dev/shm"

// Region is a named shared memory mapping. When created or opened with
// a front semaphore, the first sema.Size bytes of the mapping are
// reserved for it and excluded from Data().
type Region struct {
	name       string
	file       *os.File
	mapping    []byte
	readOnly   bool
	frontSem   *sema.Sema
	dataOffset int
}

func path(name string) string {
	return filepath.Join(dir, strings.TrimPrefix(name, "/"))
}

// Create creates and maps a new shared memory region holding dataSize
// bytes of usable data. When withFrontSem is set, an extra sema.Size
// bytes are reserved at the front of the mapping for a process-shared
// semaphore, initialized to semInitValue; FrontSem returns it.
func Create(name string, dataSize int, mode os.FileMode, withFrontSem bool, semInitValue uint32) (*Region, error) {
	const op = "shm.Create"
	if dataSize <= 0 {
		return nil, ipcerr.New(ipcerr.InvalidArgument, op, fmt.Errorf("size must be positive, got %d", dataSize))
	}

	offset := 0
	if withFrontSem {
		offset = sema.Size
	}
	totalSize := dataSize + offset

	f, err := os.OpenFile(path(name), os.O_CREATE|os.O_RDWR, mode)
	if err != nil {
		return nil, ipcerr.New(ipcerr.ResourceUnavailable, op, err)
	}

	if err := f.Truncate(int64(totalSize)); err != nil {
		f.Close()
		return nil, ipcerr.New(ipcerr.ResourceUnavailable, op, err)
	}

	mapping, err := unix.Mmap(int(f.Fd()), 0, totalSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, ipcerr.New(ipcerr.ResourceUnavailable, op, err)
	}

	r := &Region{name: name, file: f, mapping: mapping, dataOffset: offset}
	if withFrontSem {
		sema.InitAt(mapping, semInitValue)
		r.frontSem = sema.At(mapping)
	}
	return r, nil
}

// Open maps an existing shared memory region previously created with
// Create. If dataSize is 0, the usable size is derived from the
// region's filesystem metadata. withFrontSem must match the value the
// region was created with, so the data offset lines up. Open retries
// read-only if read-write access is refused, but only when no front
// semaphore was requested, since a semaphore cannot be waited on or
// posted through a read-only mapping.
func Open(name string, dataSize int, withFrontSem bool) (*Region, error) {
	const op = "shm.Open"

	f, err := os.OpenFile(path(name), os.O_RDWR, 0)
	readOnly := false
	if err != nil {
		if os.IsPermission(err) && !withFrontSem {
			f, err = os.OpenFile(path(name), os.O_RDONLY, 0)
			readOnly = true
		}
	}
	if err != nil {
		return nil, ipcerr.New(ipcerr.ResourceUnavailable, op, err)
	}

	offset := 0
	if withFrontSem {
		offset = sema.Size
	}

	mapSize := dataSize + offset
	if dataSize == 0 {
		fi, statErr := f.Stat()
		if statErr != nil {
			f.Close()
			return nil, ipcerr.New(ipcerr.ResourceUnavailable, op, statErr)
		}
		mapSize = int(fi.Size())
		if mapSize == 0 {
			f.Close()
			return nil, ipcerr.New(ipcerr.InvalidArgument, op, fmt.Errorf("region %q is empty", name))
		}
	}

	prot := unix.PROT_READ
	if !readOnly {
		prot |= unix.PROT_WRITE
	}
	mapping, err := unix.Mmap(int(f.Fd()), 0, mapSize, prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, ipcerr.New(ipcerr.ResourceUnavailable, op, err)
	}

	r := &Region{name: name, file: f, mapping: mapping, readOnly: readOnly, dataOffset: offset}
	if withFrontSem {
		r.frontSem = sema.At(mapping)
	}
	return r, nil
}

// Close unmaps and closes the region without unlinking its name. Child
// processes that only opened a region call this on exit.
func (r *Region) Close() error {
	const op = "shm.Close"
	var mapErr, closeErr error
	if r.mapping != nil {
		mapErr = unix.Munmap(r.mapping)
		r.mapping = nil
	}
	if r.file != nil {
		closeErr = r.file.Close()
		r.file = nil
	}
	if mapErr != nil {
		return ipcerr.New(ipcerr.IOFailure, op, mapErr)
	}
	if closeErr != nil {
		return ipcerr.New(ipcerr.IOFailure, op, closeErr)
	}
	return nil
}

// Destroy unmaps, closes, and unlinks the region's name. Only the
// process that created a region (the Arbiter) calls this, once, on exit.
func (r *Region) Destroy() error {
	const op = "shm.Destroy"
	name := r.name
	if err := r.Close(); err != nil {
		return err
	}
	if err := os.Remove(path(name)); err != nil && !os.IsNotExist(err) {
		return ipcerr.New(ipcerr.IOFailure, op, err)
	}
	return nil
}

// Data returns the usable data bytes of the region, after skipping any
// reserved front semaphore.
func (r *Region) Data() []byte { return r.mapping[r.dataOffset:] }

// Size returns the number of usable data bytes, excluding any front
// semaphore reservation.
func (r *Region) Size() int { return len(r.mapping) - r.dataOffset }

// Name returns the region's shared-memory name.
func (r *Region) Name() string { return r.name }

// ReadOnly reports whether the region was opened without write access.
func (r *Region) ReadOnly() bool { return r.readOnly }

// FrontSem returns the region's reserved front-of-region semaphore, or
// nil if the region was created or opened without one.
func (r *Region) FrontSem() *sema.Sema { return r.frontSem }
