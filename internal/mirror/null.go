package mirror

import "payrecon/internal/domain"

// NullMirror is the no-op implementation selected when MIRROR_HOST is
// unset (§9 "capability interfaces with null implementations"). Every
// read misses, every write is free.
type NullMirror struct{}

func NewNullMirror() NullMirror { return NullMirror{} }

func (NullMirror) Init(batchID string)                              {}
func (NullMirror) SetTotal(batchID string, total int)               {}
func (NullMirror) Increment(batchID string, f Fields)                {}
func (NullMirror) SetStatus(batchID string, status domain.BatchStatus) {}
func (NullMirror) Get(batchID string) (Counters, bool)               { return Counters{}, false }
func (NullMirror) Clear(batchID string)                              {}
