package repository

import (
	"hash/fnv"
	"math"
)

// Ratings are kept in tenths so ordering never compares floats.
type ratingFP int64

func toFixedPoint(overall float64) ratingFP {
	return ratingFP(math.Round(overall * 10))
}

func toFloat(r ratingFP) float64 {
	return float64(r) / 10
}

// treap node keyed by (rating desc, id asc).
type node struct {
	id     string
	rating ratingFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aRating, aID) ranks before (bRating, bID).
func less(aRating ratingFP, aID string, bRating ratingFP, bID string) bool {
	if aRating != bRating {
		return aRating > bRating
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority derives a stable heap priority from the id.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, rating ratingFP) *node {
	if n == nil {
		return &node{id: id, rating: rating, prio: priority(id), size: 1}
	}
	if less(rating, id, n.rating, n.id) {
		n.left = insert(n.left, id, rating)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, rating)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, rating ratingFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case rating == n.rating && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, rating)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, rating)
		}
	case less(rating, id, n.rating, n.id):
		n.left = deleteNode(n.left, id, rating)
	default:
		n.right = deleteNode(n.right, id, rating)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// ranking tracks the treap plus how many players hold each rating, which
// makes a dense rank the number of distinct higher ratings plus one.
type ranking struct {
	root   *node
	counts map[ratingFP]int
}

func newRanking() *ranking {
	return &ranking{counts: make(map[ratingFP]int)}
}

func (r *ranking) add(id string, overall float64) {
	fp := toFixedPoint(overall)
	r.root = insert(r.root, id, fp)
	r.counts[fp]++
}

func (r *ranking) remove(id string, overall float64) {
	fp := toFixedPoint(overall)
	r.root = deleteNode(r.root, id, fp)
	if r.counts[fp]--; r.counts[fp] <= 0 {
		delete(r.counts, fp)
	}
}

func (r *ranking) denseRank(overall float64) int {
	fp := toFixedPoint(overall)
	rank := 1
	for v := range r.counts {
		if v > fp {
			rank++
		}
	}
	return rank
}

// top returns the first n entries with dense ranks; names come from lookup.
func (r *ranking) top(n int, lookup func(id string) string) []Entry {
	nodes := make([]*node, 0, n)
	collectTopN(r.root, n, &nodes)
	out := make([]Entry, 0, len(nodes))
	rank := 0
	var prev ratingFP
	for i, nd := range nodes {
		if i == 0 || nd.rating != prev {
			rank++
			prev = nd.rating
		}
		out = append(out, Entry{Rank: rank, PlayerID: nd.id, Name: lookup(nd.id), Overall: toFloat(nd.rating)})
	}
	return out
}

// assignDenseRanks sets ranks on entries already ordered by overall desc.
func assignDenseRanks(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Overall != entries[i-1].Overall {
			rank++
		}
		entries[i].Rank = rank
	}
}
