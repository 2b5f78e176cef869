package object

import "evilcandy/internal/strutil"

// hashTable is the dict's backing store: open addressing with the
// perturbation probe sequence transcribed from
// original_source/src/hashtable.c (seek_helper/transfer_table), plus
// a compact, insertion-ordered entries slice (tombstones dropped on
// resize) so iteration order matches insertion order without the
// probe sequence itself needing to preserve it.
type hashEntry struct {
	key   string
	hash  uint64
	val   Object
	alive bool
}

const initTableSize = 16

type hashTable struct {
	buckets []int32 // index into entries; -1 = empty, -2 = dead (tombstone)
	entries []hashEntry
	count   int // live entries
}

func newHashTable() *hashTable {
	t := &hashTable{}
	t.buckets = make([]int32, initTableSize)
	for i := range t.buckets {
		t.buckets[i] = -1
	}
	return t
}

func keyHash(key string) uint64 {
	return strutil.FNV1a([]byte(key))
}

func bucketIndex(hash uint64, size int) int {
	return int(hash) & (size - 1)
}

// seek finds the bucket holding key, or (if found==false) the first
// empty-or-dead bucket where it could be inserted. Transcribes
// seek_helper's probe exactly: i = (i*5 + perturb + 1) mod size;
// perturb >>= 5.
func (t *hashTable) seek(key string, hash uint64) (bucket int, found bool) {
	size := len(t.buckets)
	i := bucketIndex(hash, size)
	perturb := hash
	firstDead := -1
	for {
		b := t.buckets[i]
		if b == -1 {
			if firstDead >= 0 {
				return firstDead, false
			}
			return i, false
		}
		if b == -2 {
			if firstDead < 0 {
				firstDead = i
			}
		} else if t.entries[b].key == key {
			return i, true
		}
		i = bucketIndex(uint64(i)*5+perturb+1, size)
		perturb >>= 5
	}
}

func (t *hashTable) Get(key string) (Object, bool) {
	hash := keyHash(key)
	i, found := t.seek(key, hash)
	if !found {
		return nil, false
	}
	return t.entries[t.buckets[i]].val, true
}

func (t *hashTable) Has(key string) bool {
	_, found := t.seek(key, keyHash(key))
	return found
}

// Set inserts or overwrites key. A nil val deletes (§4.1 mapping
// protocol: "setitem with null value deletes").
func (t *hashTable) Set(key string, val Object) {
	if val == nil {
		t.Delete(key)
		return
	}
	hash := keyHash(key)
	i, found := t.seek(key, hash)
	if found {
		idx := t.buckets[i]
		old := t.entries[idx].val
		t.entries[idx].val = Retain(val)
		Release(old)
		return
	}
	t.entries = append(t.entries, hashEntry{key: key, hash: hash, val: Retain(val), alive: true})
	t.buckets[i] = int32(len(t.entries) - 1)
	t.count++
	t.maybeGrow()
}

func (t *hashTable) Delete(key string) bool {
	hash := keyHash(key)
	i, found := t.seek(key, hash)
	if !found {
		return false
	}
	idx := t.buckets[i]
	t.entries[idx].alive = false
	Release(t.entries[idx].val)
	t.entries[idx].val = nil
	t.buckets[i] = -2
	t.count--
	t.maybeShrink()
	return true
}

// Keys returns live keys in insertion order.
func (t *hashTable) Keys() []string {
	out := make([]string, 0, t.count)
	for _, e := range t.entries {
		if e.alive {
			out = append(out, e.key)
		}
	}
	return out
}

func (t *hashTable) rebuild(size int) {
	if size < initTableSize {
		size = initTableSize
	}
	newEntries := make([]hashEntry, 0, t.count)
	for _, e := range t.entries {
		if e.alive {
			newEntries = append(newEntries, e)
		}
	}
	t.entries = newEntries
	t.buckets = make([]int32, size)
	for i := range t.buckets {
		t.buckets[i] = -1
	}
	for idx := range t.entries {
		e := &t.entries[idx]
		perturb := e.hash
		i := bucketIndex(e.hash, size)
		for t.buckets[i] != -1 {
			i = bucketIndex(uint64(i)*5+perturb+1, size)
			perturb >>= 5
		}
		t.buckets[i] = int32(idx)
	}
}

// maybeGrow doubles the bucket array once load reaches 2/3, per §4.1.
func (t *hashTable) maybeGrow() {
	if t.count*3 >= len(t.buckets)*2 {
		t.rebuild(len(t.buckets) * 2)
	}
}

// maybeShrink halves the bucket array once load drops below 1/6 and
// the table is bigger than the initial size, per §4.1.
func (t *hashTable) maybeShrink() {
	if len(t.buckets) > initTableSize && t.count*6 < len(t.buckets) {
		t.rebuild(len(t.buckets) / 2)
	}
}
