package shred

import (
	"time"

	"github.com/hashicorp/go-multierror"
)

// EntryType - классификация записи на момент обработки
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
	EntrySymlink   EntryType = "symlink"
	EntryOther     EntryType = "other" // fifo, socket, device
)

// State - последнее достигнутое состояние записи
type State string

const (
	StatePending           State = "PENDING"
	StateOverwriting       State = "OVERWRITING"
	StateFlushed           State = "FLUSHED"
	StateRenamed           State = "RENAMED"
	StateUnlinked          State = "UNLINKED"
	StateChildrenProcessed State = "CHILDREN_PROCESSED"
	StateRemoved           State = "REMOVED"
	StateFailed            State = "FAILED"
)

// PassResult результат одного прохода перезаписи
type PassResult struct {
	Pass         int
	BytesWritten int64
	Flushed      bool
	Err          error
}

// Outcome - узел дерева результатов для одной записи
type Outcome struct {
	Path     string
	Type     EntryType
	State    State
	Reason   Reason
	Err      error
	Size     int64
	Passes   []PassResult
	Warnings []string
	Duration time.Duration

	// FailedAt - состояние, в котором запись перешла в FAILED
	FailedAt State
	// RenamedTo - случайное имя, под которым запись осталась при UnlinkFailed
	RenamedTo string

	Children []*Outcome
}

func newOutcome(path string, typ EntryType) *Outcome {
	return &Outcome{Path: path, Type: typ, State: StatePending}
}

// advance переводит запись в следующее состояние
func (o *Outcome) advance(s State) {
	o.State = s
}

// fail переводит запись в терминальное состояние FAILED
func (o *Outcome) fail(err error) {
	o.FailedAt = o.State
	o.State = StateFailed
	o.Reason = ReasonOf(err)
	o.Err = err
}

// Failed сообщает, завершилась ли сама запись отказом
func (o *Outcome) Failed() bool {
	return o.State == StateFailed
}

// Success истинно только если запись и все её потомки уничтожены
func (o *Outcome) Success() bool {
	if o.Failed() {
		return false
	}
	for _, c := range o.Children {
		if !c.Success() {
			return false
		}
	}
	return true
}

// Walk обходит дерево в глубину, родитель раньше детей
func (o *Outcome) Walk(fn func(*Outcome)) {
	fn(o)
	for _, c := range o.Children {
		c.Walk(fn)
	}
}

// Failures возвращает все записи дерева в состоянии FAILED
func (o *Outcome) Failures() []*Outcome {
	var out []*Outcome
	o.Walk(func(n *Outcome) {
		if n.Failed() {
			out = append(out, n)
		}
	})
	return out
}

// Counts сводка по дереву
type Counts struct {
	Files        int
	Directories  int
	Succeeded    int
	Failed       int
	BytesWritten int64
}

// Counts подсчитывает записи и записанные байты
func (o *Outcome) Counts() Counts {
	var c Counts
	o.Walk(func(n *Outcome) {
		if n.Type == EntryDirectory {
			c.Directories++
		} else {
			c.Files++
		}
		if n.Failed() {
			c.Failed++
		} else {
			c.Succeeded++
		}
		for _, p := range n.Passes {
			c.BytesWritten += p.BytesWritten
		}
	})
	return c
}

// Errors объединяет ошибки всех отказавших записей; nil при полном успехе
func (o *Outcome) Errors() error {
	var result *multierror.Error
	for _, f := range o.Failures() {
		result = multierror.Append(result, f.Err)
	}
	return result.ErrorOrNil()
}
