package cycles

import (
	"encoding/binary"
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-logr/logr"
	"golang.org/x/sys/unix"
)

const (
	// vars not defined in x/sys/unix.
	perfSampleIdentifier = 1 << 16

	counterReaderBufSize = 8
)

type counterReader interface {
	start() error
	close() error
	read() (uint64, error)
}

// Func definitions for unit testing
var (
	newCounterReaderFunc func(int) (counterReader, error) = newPerfCounterReader
)

type perfCounterReader struct {
	cpu int
	fd  int
}

func newPerfCounterReader(cpu int) (counterReader, error) {
	attr := &unix.PerfEventAttr{
		Type:        unix.PERF_TYPE_HARDWARE,
		Config:      unix.PERF_COUNT_HW_CPU_CYCLES,
		Size:        uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
		Bits:        unix.PerfBitDisabled | unix.PerfBitExcludeHv | unix.PerfBitInherit,
		Sample_type: perfSampleIdentifier,
	}
	fd, err := unix.PerfEventOpen(attr, -1, cpu, -1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open cycle counter for cpu %d: %w", cpu, err)
	}

	return &perfCounterReader{cpu: cpu, fd: fd}, nil
}

func (p *perfCounterReader) start() error {
	return unix.IoctlSetInt(p.fd, unix.PERF_EVENT_IOC_ENABLE, 0)
}

func (p *perfCounterReader) close() error {
	return syscall.Close(p.fd)
}

func (p *perfCounterReader) read() (uint64, error) {
	buf := make([]byte, counterReaderBufSize)
	if _, err := syscall.Read(p.fd, buf); err != nil {
		return 0, fmt.Errorf("failed to read cycle counter for cpu %d: %w", p.cpu, err)
	}

	return binary.LittleEndian.Uint64(buf), nil
}

// Reader reads raw cycle counters for every core of one cluster.
// Counters are enabled at construction and must be closed after use.
type Reader struct {
	cores   []int
	readers map[int]counterReader
	log     logr.Logger
}

func NewReader(cores []int, log logr.Logger) (*Reader, error) {
	r := &Reader{
		cores:   cores,
		readers: make(map[int]counterReader, len(cores)),
		log:     log,
	}

	for _, cpu := range cores {
		reader, err := newCounterReaderFunc(cpu)
		if err != nil {
			r.Close()
			return nil, err
		}
		if err := reader.start(); err != nil {
			_ = reader.close()
			r.Close()
			return nil, fmt.Errorf("failed to enable cycle counter for cpu %d: %w", cpu, err)
		}
		r.readers[cpu] = reader
	}

	return r, nil
}

// Read captures the current counter value of every core in the cluster.
func (r *Reader) Read() (map[int]uint64, error) {
	counts := make(map[int]uint64, len(r.readers))
	for cpu, reader := range r.readers {
		val, err := reader.read()
		if err != nil {
			return nil, err
		}
		counts[cpu] = val
	}

	return counts, nil
}

func (r *Reader) Close() {
	for cpu, reader := range r.readers {
		if err := reader.close(); err != nil {
			r.log.V(5).Info(fmt.Sprintf("error while closing counter reader, err: %v", err), "cpu", cpu)
		}
		delete(r.readers, cpu)
	}
}
