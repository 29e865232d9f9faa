package queue

// run is the scheduling metadata shared by every member of a
// contiguous same-opcode, same-bucket command run (spec.md section
// 4.3 "run address sharing"). It is attached to the bucket, not the
// wire: the share tracked here is the full, uncapped common address
// prefix, independent of protocol.MaxShare which bounds only what the
// wire header can encode (see internal/protocol/header.go).
//
// A run is built incrementally as commands are appended to a bucket's
// tail and shrinks from the front as they are popped. Once a single
// member remains its run pointer is cleared; a lone command is
// scheduled exactly like one with no run at all.
type run struct {
	share      int // current common address-prefix length, bytes
	count      int // members still resident
	sumDataLen int // sum of len(cmd.Data) across resident members
}

// len returns the packed length (opcode byte + shared prefix + each
// member's unshared suffix) of the run if popped whole, counted with
// the run's full share. protocol.PackRun writes at most
// protocol.MaxShare shared bytes, so when share exceeds that the body
// it writes is longer than this; the length header is not counted.
func (r *run) len() int {
	if r.count == 0 {
		return 0
	}
	return 1 + r.share + r.sumDataLen - r.count*r.share
}
