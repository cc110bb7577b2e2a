package pipeline

import (
	"github.com/khaledhikmat/vp-go/service/config"
	"github.com/khaledhikmat/vp-go/service/data"
)

type ServicesFactory struct {
	CfgSvc  config.IService
	DataSvc data.IService
}

// Source is the capture boundary the reader stage drains.
// ReadNext returns false on end of stream or on a read error; either way
// the reader treats it as exhaustion and finishes its queue normally.
type Source[T any] interface {
	Open() error
	ReadNext() (T, bool)
	Close() error
}

// Transformer is the opaque per-item operation the processor stage
// invokes. It takes ownership of its input; on error it must release it.
type Transformer[T any] interface {
	Transform(item T) (T, error)
}

// Sink is the output boundary the writer stage forwards to. Write takes
// ownership of the item.
type Sink[T any] interface {
	Open() error
	Write(item T) error
	Close() error
}

// Processed pairs a transformed item with its zero-based capture order.
type Processed[T any] struct {
	Index int
	Item  T
}
