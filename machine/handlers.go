package machine

// opLoadi loads one immediate byte per selected register.
// The empty mask is the halt encoding.
func (m *Machine) opLoadi(dst Mask) (err error) {
	if dst == 0 {
		m.Halt()
		return
	}

	slots, count := m.Register.Resolve(dst)
	for _, slot := range slots[:count] {
		*slot = m.fetch()
	}

	return
}

func (m *Machine) opInc(mask Mask) (err error) {
	m.Register.Decompose(mask, m.Register.Compose(mask)+1)
	return
}

func (m *Machine) opDec(mask Mask) (err error) {
	m.Register.Decompose(mask, m.Register.Compose(mask)-1)
	return
}

// opLoadr loads the destination registers from the memory addresses held
// in the source registers. All reads complete before any register is written.
func (m *Machine) opLoadr(dst Mask) (err error) {
	src := Mask(m.fetch())
	if !src.Valid(dst.Count()) {
		err = ErrMaskInvalid
		return
	}

	addrs, count := m.Register.Values(src)
	var data [REGISTER_COUNT]byte
	for n, addr := range addrs[:count] {
		data[n] = m.Memory[addr]
	}

	slots, count := m.Register.Resolve(dst)
	for n, slot := range slots[:count] {
		*slot = data[n]
	}

	return
}

// operands reads the source mask byte and returns the two source
// register values, lower indexed register first.
func (m *Machine) operands() (a, b byte, err error) {
	src := Mask(m.fetch())
	if !src.Valid(2) {
		err = ErrMaskInvalid
		return
	}

	values, _ := m.Register.Values(src)
	a, b = values[0], values[1]

	return
}

// wide performs a carry propagating operation, spreading the result
// across the destination registers.
func (m *Machine) wide(dst Mask, op func(a, b uint32) (uint32, error)) (err error) {
	a, b, err := m.operands()
	if err != nil {
		return
	}

	result, err := op(uint32(a), uint32(b))
	if err != nil {
		return
	}

	m.Register.Decompose(dst, result)

	return
}

// bitwise performs a single byte operation, copying the result into
// every destination register.
func (m *Machine) bitwise(dst Mask, op func(a, b byte) byte) (err error) {
	a, b, err := m.operands()
	if err != nil {
		return
	}

	m.Register.Broadcast(dst, op(a, b))

	return
}

func (m *Machine) opAdd(dst Mask) error {
	return m.wide(dst, func(a, b uint32) (uint32, error) { return a + b, nil })
}

func (m *Machine) opSub(dst Mask) error {
	return m.wide(dst, func(a, b uint32) (uint32, error) { return a - b, nil })
}

func (m *Machine) opMul(dst Mask) error {
	return m.wide(dst, func(a, b uint32) (uint32, error) { return a * b, nil })
}

func (m *Machine) opDiv(dst Mask) error {
	return m.wide(dst, func(a, b uint32) (uint32, error) {
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	})
}

func (m *Machine) opAnd(dst Mask) error {
	return m.bitwise(dst, func(a, b byte) byte { return a & b })
}

func (m *Machine) opOr(dst Mask) error {
	return m.bitwise(dst, func(a, b byte) byte { return a | b })
}

func (m *Machine) opXor(dst Mask) error {
	return m.bitwise(dst, func(a, b byte) byte { return a ^ b })
}

// opRotr moves each selected register's value to the next higher selected
// register. The highest wraps around to the lowest.
func (m *Machine) opRotr(mask Mask) (err error) {
	slots, count := m.Register.Resolve(mask)
	if count < 2 {
		return
	}

	last := *slots[count-1]
	for n := count - 1; n > 0; n-- {
		*slots[n] = *slots[n-1]
	}
	*slots[0] = last

	return
}

// allEqual returns true if every value equals the first.
func allEqual(values []byte) bool {
	for _, value := range values[1:] {
		if value != values[0] {
			return false
		}
	}
	return true
}

// jump reads the target address, and jumps if cond holds for the selected
// register values. The empty mask always jumps.
func (m *Machine) jump(mask Mask, cond func(values []byte) bool) (err error) {
	target := m.fetch()

	values, count := m.Register.Values(mask)
	if count == 0 || cond(values[:count]) {
		m.Pc = target
	}

	return
}

func (m *Machine) opJmpneq(mask Mask) error {
	return m.jump(mask, func(values []byte) bool {
		if len(values) == 1 {
			return values[0] != 0
		}
		return !allEqual(values)
	})
}

func (m *Machine) opJmpeq(mask Mask) error {
	return m.jump(mask, func(values []byte) bool {
		if len(values) == 1 {
			return values[0] == 0
		}
		return allEqual(values)
	})
}

// opStor copies the selected registers to consecutive memory addresses.
func (m *Machine) opStor(src Mask) (err error) {
	base := int(m.fetch())

	values, count := m.Register.Values(src)
	if base+count > MEMORY_SIZE {
		err = ErrStoreBounds
		return
	}

	copy(m.Memory[base:], values[:count])

	return
}

func (m *Machine) opItr(index Mask) (err error) {
	handler := m.Interrupt[index&0xf]
	if handler == nil {
		err = ErrInterruptMissing
		return
	}

	handler(m)

	return
}
