package computer

// NewMinimalComputer builds a Computer around ReferenceInstructionSet,
// loads mem as its initial memory image, and returns it ready to tick.
func NewMinimalComputer(mem map[uint16]uint8) (*Computer, error) {
	set, err := ReferenceInstructionSet()
	if err != nil {
		return nil, err
	}
	c, err := New(RootName, set)
	if err != nil {
		return nil, err
	}
	c.Load(mem)
	return c, nil
}
