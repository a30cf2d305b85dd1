package console

// promptKind tags which reads are outstanding. A char read always wins
// over a line read for the next chunk of input.
type promptKind int

const (
	promptIdle promptKind = iota
	promptLine
	promptChar
	promptLineAndChar
)

func (k promptKind) String() string {
	switch k {
	case promptLine:
		return "line"
	case promptChar:
		return "char"
	case promptLineAndChar:
		return "line+char"
	default:
		return "idle"
	}
}

type lineRequest struct {
	prompt       string
	continuation string
	pending      *Pending
}

type charRequest struct {
	prompt  string
	pending *Pending
	// handle runs under the engine lock; used for prompts the engine
	// raises itself
	handle func(data string)
}

func (c charRequest) resolve(data string) {
	if c.handle != nil {
		c.handle(data)
	}
	if c.pending != nil {
		c.pending.settle(data, nil)
	}
}

func (c charRequest) reject(err error) {
	if c.pending != nil {
		c.pending.settle("", err)
	}
}

// promptState is the tagged prompt record. The request fields are only
// meaningful when kind says so.
type promptState struct {
	kind promptKind
	line lineRequest
	char charRequest
}

func (s promptState) hasLine() bool {
	return s.kind == promptLine || s.kind == promptLineAndChar
}

func (s promptState) hasChar() bool {
	return s.kind == promptChar || s.kind == promptLineAndChar
}

func (s promptState) withLine(r lineRequest) promptState {
	s.line = r
	if s.hasChar() {
		s.kind = promptLineAndChar
	} else {
		s.kind = promptLine
	}
	return s
}

func (s promptState) withChar(r charRequest) promptState {
	s.char = r
	if s.hasLine() {
		s.kind = promptLineAndChar
	} else {
		s.kind = promptChar
	}
	return s
}

func (s promptState) withoutLine() promptState {
	s.line = lineRequest{}
	if s.hasChar() {
		s.kind = promptChar
	} else {
		s.kind = promptIdle
	}
	return s
}

func (s promptState) withoutChar() promptState {
	s.char = charRequest{}
	if s.hasLine() {
		s.kind = promptLine
	} else {
		s.kind = promptIdle
	}
	return s
}
