package mysearch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sagilyp/lab4/mydomain"
)

// DesignSlots - расчетный размер словаря для настоящей атаки.
const DesignSlots = uint64(1) << 30

// ErrSlots - недопустимый размер словаря.
var ErrSlots = errors.New("invalid dictionary size")

// Table - словарь отличительных точек: адрес считается по концу цепочки,
// хранится ее начало.
//
// Каждая запись помечена эпохой (номер вложения + 1). Запись с другой эпохой
// считается пустой, поэтому смена вложения очищает словарь за O(1).
// Эпоха 0 зарезервирована под пустой слот.
type Table[C any] interface {
	// PopInsert безусловно записывает seed по адресу hash(end) и возвращает
	// прежнего владельца слота, если он был записан в той же эпохе.
	PopInsert(seed, end C, epoch uint32) (evicted C, occupied bool)
	Lookup(end C, epoch uint32) (seed C, ok bool)
	Slots() uint64
	// Bytes - память под слоты.
	Bytes() uint64
}

// Dict - таблица с открытой адресацией без цепочек и без пробинга:
// один слот на адрес, вытеснение безусловное. Размер фиксирован.
// Не потокобезопасна.
type Dict[C any] struct {
	dom    mydomain.Domain[C]
	slots  uint64
	length uint64
	seeds  []byte
	epochs []uint32
}

func NewDict[C any](dom mydomain.Domain[C], slots uint64) (*Dict[C], error) {
	if slots == 0 {
		return nil, fmt.Errorf("%w: zero slots", ErrSlots)
	}
	length := uint64(dom.Length())
	if length == 0 || slots > (^uint64(0)>>1)/length {
		return nil, fmt.Errorf("%w: %d slots of %d bytes", ErrSlots, slots, length)
	}
	return &Dict[C]{
		dom:    dom,
		slots:  slots,
		length: length,
		seeds:  make([]byte, slots*length),
		epochs: make([]uint32, slots),
	}, nil
}

// Address - номер слота для отличительной точки end.
func (d *Dict[C]) Address(end C) uint64 {
	return d.dom.Hash(end) % d.slots
}

func (d *Dict[C]) PopInsert(seed, end C, epoch uint32) (evicted C, occupied bool) {
	return d.popInsertAt(d.Address(end), seed, epoch)
}

func (d *Dict[C]) popInsertAt(idx uint64, seed C, epoch uint32) (evicted C, occupied bool) {
	slot := d.seeds[idx*d.length : (idx+1)*d.length]
	if d.epochs[idx] == epoch {
		occupied = true
		d.dom.Unserialize(slot, &evicted)
	}
	d.dom.Serialize(seed, slot)
	d.epochs[idx] = epoch
	return evicted, occupied
}

func (d *Dict[C]) Lookup(end C, epoch uint32) (seed C, ok bool) {
	return d.lookupAt(d.Address(end), epoch)
}

func (d *Dict[C]) lookupAt(idx uint64, epoch uint32) (seed C, ok bool) {
	if d.epochs[idx] != epoch {
		return seed, false
	}
	d.dom.Unserialize(d.seeds[idx*d.length:(idx+1)*d.length], &seed)
	return seed, true
}

// Len - число слотов, занятых в эпохе epoch. Проходит весь словарь.
func (d *Dict[C]) Len(epoch uint32) int {
	n := 0
	for _, e := range d.epochs {
		if e == epoch {
			n++
		}
	}
	return n
}

// Reset помечает все слоты пустыми.
func (d *Dict[C]) Reset() {
	clear(d.epochs)
}

func (d *Dict[C]) Slots() uint64 { return d.slots }

func (d *Dict[C]) Bytes() uint64 { return d.slots * (d.length + 4) }

// LockedDict - общий словарь для нескольких потоков. Блокировка держится
// только на время вставки с вытеснением.
type LockedDict[C any] struct {
	mu   sync.Mutex
	dict *Dict[C]
}

func NewLockedDict[C any](dict *Dict[C]) *LockedDict[C] {
	return &LockedDict[C]{dict: dict}
}

func (l *LockedDict[C]) PopInsert(seed, end C, epoch uint32) (C, bool) {
	idx := l.dict.Address(end)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dict.popInsertAt(idx, seed, epoch)
}

func (l *LockedDict[C]) Lookup(end C, epoch uint32) (C, bool) {
	idx := l.dict.Address(end)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dict.lookupAt(idx, epoch)
}

func (l *LockedDict[C]) Slots() uint64 { return l.dict.Slots() }

func (l *LockedDict[C]) Bytes() uint64 { return l.dict.Bytes() }

type shard[C any] struct {
	mu   sync.Mutex
	dict *Dict[C]
}

// ShardedDict делит адресное пространство между шардами. Шард выбирается
// по старшим битам того же хеша, адрес внутри шарда - по младшим.
type ShardedDict[C any] struct {
	dom    mydomain.Domain[C]
	shards []shard[C]
}

func NewShardedDict[C any](dom mydomain.Domain[C], slots uint64, nshards int) (*ShardedDict[C], error) {
	if nshards < 1 || uint64(nshards) > slots {
		return nil, fmt.Errorf("%w: %d shards for %d slots", ErrSlots, nshards, slots)
	}
	sd := &ShardedDict[C]{dom: dom, shards: make([]shard[C], nshards)}
	per := slots / uint64(nshards)
	for i := range sd.shards {
		d, err := NewDict(dom, per)
		if err != nil {
			return nil, err
		}
		sd.shards[i].dict = d
	}
	return sd, nil
}

func (s *ShardedDict[C]) locate(end C) (*shard[C], uint64) {
	h := s.dom.Hash(end)
	sh := &s.shards[(h>>32)%uint64(len(s.shards))]
	return sh, h % sh.dict.slots
}

func (s *ShardedDict[C]) PopInsert(seed, end C, epoch uint32) (C, bool) {
	sh, idx := s.locate(end)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.dict.popInsertAt(idx, seed, epoch)
}

func (s *ShardedDict[C]) Lookup(end C, epoch uint32) (C, bool) {
	sh, idx := s.locate(end)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.dict.lookupAt(idx, epoch)
}

func (s *ShardedDict[C]) Slots() uint64 {
	var n uint64
	for i := range s.shards {
		n += s.shards[i].dict.slots
	}
	return n
}

func (s *ShardedDict[C]) Bytes() uint64 {
	var n uint64
	for i := range s.shards {
		n += s.shards[i].dict.Bytes()
	}
	return n
}
