package warehouse

// indexes holds TypeIndex, PairIndex and ParentIndex.
type indexes struct {
	byKind [kindCount][]TokenID
	pairs  map[TokenID]TokenID
	parent []TokenID
}

type stackEntry struct {
	id    TokenID
	frame bool
}

// buildIndexes fills all three indexes in one forward pass.
//
// A single stack holds the ids of unclosed opens and of inline containers
// (tokens with children). Inline frames expire once the walk passes the end of
// their ChildRange; anything still open above an expiring frame is recorded
// open-ended. openAt keeps the stack positions of unclosed opens per family,
// so a close pairs with the innermost open of its family in O(1). A close only
// pairs with an open above the innermost inline frame; anything else is stray.
//
// Close tokens that had no line range inherit their opener's range here.
func buildIndexes(tokens []Token, families int) indexes {
	idx := indexes{
		pairs:  make(map[TokenID]TokenID),
		parent: make([]TokenID, len(tokens)),
	}

	openAt := make([][]int, families+1)
	var stack []stackEntry
	var frames []int // stack positions of inline containers

	popTo := func(height int) {
		for len(stack) > height {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !top.frame {
				fam := tokens[top.id].family
				openAt[fam] = openAt[fam][:len(openAt[fam])-1]
			}
		}
		for len(frames) > 0 && frames[len(frames)-1] >= len(stack) {
			frames = frames[:len(frames)-1]
		}
	}

	for i := range tokens {
		id := TokenID(i)
		tok := &tokens[i]

		for len(frames) > 0 {
			pos := frames[len(frames)-1]
			if tokens[stack[pos].id].children.End > id {
				break
			}
			popTo(pos)
		}

		idx.byKind[tok.kind] = append(idx.byKind[tok.kind], id)

		parent := NoToken
		if len(stack) > 0 {
			parent = stack[len(stack)-1].id
		}

		switch {
		case tok.nesting > 0 && tok.family != 0:
			idx.pairs[id] = NoToken
			openAt[tok.family] = append(openAt[tok.family], len(stack))
			stack = append(stack, stackEntry{id: id})

		case tok.nesting < 0 && tok.family != 0 && canClose(openAt[tok.family], frames):
			pos := openAt[tok.family][len(openAt[tok.family])-1]
			open := stack[pos].id
			popTo(pos)
			idx.pairs[open] = id
			parent = open
			if tok.lineless {
				tok.lineStart, tok.lineEnd = tokens[open].lineStart, tokens[open].lineEnd
			}
		}

		idx.parent[i] = parent

		if tok.children.Len() > 0 {
			frames = append(frames, len(stack))
			stack = append(stack, stackEntry{id: id, frame: true})
		}
	}

	return idx
}

// canClose reports whether the innermost open of a family lies above the
// innermost inline frame.
func canClose(opens, frames []int) bool {
	if len(opens) == 0 {
		return false
	}
	return len(frames) == 0 || opens[len(opens)-1] > frames[len(frames)-1]
}
