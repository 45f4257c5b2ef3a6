package thermo

import (
	"errors"
	"fmt"
)

// CheckLost runs the lost atom and bond checks Report performs before a
// row, without evaluating or writing anything.
func (t *Thermo) CheckLost(snap Snapshot, sess Session) (Session, []string, error) {
	return t.checkLost(&snap, sess)
}

// checkLost compares the current atom count with the session reference.
// Under the warn policy the reference adopts the new count, so each loss is
// reported once.
func (t *Thermo) checkLost(snap *Snapshot, sess Session) (Session, []string, error) {
	var diags []string

	if snap.MissingBondAtoms > 0 {
		switch t.set.lostBond {
		case PolicyError:
			sess.Active = false
			return sess, diags, &ConsistencyError{Step: snap.Step, Err: ErrBondAtomsMissing}
		case PolicyWarn:
			if !sess.BondWarned {
				diags = append(diags, fmt.Sprintf("Bond atoms missing at step %d", snap.Step))
				sess.BondWarned = true
			}
		}
	}

	if snap.Atoms == sess.Atoms {
		return sess, diags, nil
	}
	switch t.set.lost {
	case PolicyIgnore:
		return sess, diags, nil
	case PolicyError:
		sess.Active = false
		return sess, diags, &ConsistencyError{Original: sess.Atoms, Current: snap.Atoms, Step: snap.Step, Err: ErrLostAtoms}
	}
	diags = append(diags, fmt.Sprintf("Lost atoms: original %d current %d", sess.Atoms, snap.Atoms))
	sess.Atoms = snap.Atoms
	return sess, diags, nil
}

func isRoleNotBound(err error) bool { return errors.Is(err, ErrRoleNotBound) }
