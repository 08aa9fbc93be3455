package stream

import "github.com/nanoframe/h2reactor/frame"

// Transition advances s according to the frame (kind, flags) just sent or
// received in direction dir, per RFC 7540 section 5.1. It returns nil if
// the frame is legal in s's current state, a *StreamErr if only this
// stream should be reset, or a *ConnError if the whole connection must be
// torn down with GOAWAY.
//
// Transition never recurses: applying a second frame to the same stream
// from within a callback triggered by this call is a programming error and
// panics, since the original stream machine assumed single-threaded,
// non-reentrant application of frames to a connection's streams.
func Transition(s *Stream, kind frame.Type, dir Direction, flags frame.Flags) error {
	if s.inTransition {
		panic("stream: recursive Transition on the same stream")
	}
	s.inTransition = true
	defer func() { s.inTransition = false }()

	switch s.state {
	case Idle:
		return idleTransition(s, kind, flags)
	case ReservedLocal:
		return reservedLocalTransition(s, kind, dir)
	case ReservedRemote:
		return reservedRemoteTransition(s, kind, dir)
	case Open:
		return openTransition(s, kind, dir, flags)
	case HalfClosedLocal:
		return halfClosedLocalTransition(s, kind, dir, flags)
	case HalfClosedRemote:
		return halfClosedRemoteTransition(s, kind, dir, flags)
	case Closed:
		return closedTransition(s, kind)
	}

	return connErrorf(frame.InternalError, "stream %d in unknown state", s.id)
}

func idleTransition(s *Stream, kind frame.Type, flags frame.Flags) error {
	switch kind {
	case frame.TypeHeaders:
		if flags.Has(frame.FlagEndStream) {
			s.state = HalfClosedRemote
		} else {
			s.state = Open
		}
	case frame.TypePushPromise:
		s.state = ReservedRemote
	case frame.TypePriority:
		// legal in any state, no transition.
	default:
		return connErrorf(frame.ProtocolError, "frame %s on idle stream %d", kind, s.id)
	}

	return nil
}

func reservedLocalTransition(s *Stream, kind frame.Type, dir Direction) error {
	switch kind {
	case frame.TypeHeaders:
		if dir == Send {
			s.state = HalfClosedRemote
			return nil
		}
	case frame.TypeRstStream:
		s.state = Closed
		return nil
	case frame.TypeWindowUpdate, frame.TypePriority:
		return nil
	}

	return streamErrorf(s.id, frame.ProtocolError, "frame %s/%v on reserved(local) stream", kind, dir)
}

func reservedRemoteTransition(s *Stream, kind frame.Type, dir Direction) error {
	switch kind {
	case frame.TypeHeaders:
		if dir == Recv {
			s.state = HalfClosedLocal
			return nil
		}
	case frame.TypeRstStream:
		s.state = Closed
		return nil
	case frame.TypeWindowUpdate, frame.TypePriority:
		return nil
	}

	return streamErrorf(s.id, frame.ProtocolError, "frame %s/%v on reserved(remote) stream", kind, dir)
}

func openTransition(s *Stream, kind frame.Type, dir Direction, flags frame.Flags) error {
	if kind == frame.TypeRstStream {
		s.state = Closed
		return nil
	}

	if (kind == frame.TypeHeaders || kind == frame.TypeData) && flags.Has(frame.FlagEndStream) {
		if dir == Send {
			s.state = HalfClosedLocal
		} else {
			s.state = HalfClosedRemote
		}
	}

	return nil
}

func halfClosedLocalTransition(s *Stream, kind frame.Type, dir Direction, flags frame.Flags) error {
	if kind == frame.TypeRstStream {
		s.state = Closed
		return nil
	}

	if dir == Send {
		switch kind {
		case frame.TypeWindowUpdate, frame.TypePriority:
			return nil
		default:
			return connErrorf(frame.ProtocolError, "send %s after half-closing (local) stream %d", kind, s.id)
		}
	}

	if flags.Has(frame.FlagEndStream) {
		s.state = Closed
	}

	return nil
}

func halfClosedRemoteTransition(s *Stream, kind frame.Type, dir Direction, flags frame.Flags) error {
	if kind == frame.TypeRstStream {
		s.state = Closed
		return nil
	}

	if dir == Recv {
		switch kind {
		case frame.TypeWindowUpdate, frame.TypePriority:
			return nil
		default:
			return streamErrorf(s.id, frame.StreamClosedError, "received %s after peer half-closed (remote) stream %d", kind, s.id)
		}
	}

	if flags.Has(frame.FlagEndStream) {
		s.state = Closed
	}

	return nil
}

func closedTransition(s *Stream, kind frame.Type) error {
	if kind == frame.TypePriority || kind == frame.TypeWindowUpdate {
		return nil
	}

	return streamErrorf(s.id, frame.StreamClosedError, "frame %s on closed stream %d", kind, s.id)
}
