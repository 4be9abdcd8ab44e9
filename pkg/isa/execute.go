package isa

// Execute runs d's semantic action against p. All instructions that do
// not explicitly own the pc (i.e. d.WritesPC is false) advance pc by 4
// afterwards, per spec.md §4.1.
func Execute(d *Descriptor, w Word, p Processor) error {
	pc := p.PC()
	if err := d.Exec(w, p); err != nil {
		return err
	}
	if !d.WritesPC {
		p.SetPC(pc + 4)
	}
	return nil
}
