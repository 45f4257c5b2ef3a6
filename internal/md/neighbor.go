package md

// neighborList holds every pair within cutoff+skin as of the last build.
type neighborList struct {
	pairs [][2]int
	ref   []Vec3
	valid bool
}

func (n *neighborList) invalidate() { n.valid = false }

// stale reports whether an atom moved more than half the skin since the
// last build. Moving more than the full skin means pairs may have been
// missed and is counted as a dangerous build.
func (n *neighborList) stale(s *System) bool {
	if !n.valid || len(n.ref) != len(s.pos) {
		return true
	}
	var max2 float64
	for i := range s.pos {
		d := s.minImage(Vec3{
			s.pos[i][0] - n.ref[i][0],
			s.pos[i][1] - n.ref[i][1],
			s.pos[i][2] - n.ref[i][2],
		})
		if r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]; r2 > max2 {
			max2 = r2
		}
	}
	skin := s.params.Skin
	if skin > 0 && max2 > skin*skin {
		s.ndanger++
	}
	return 4*max2 > skin*skin
}

func (s *System) buildNeighbors() {
	rc := s.params.Cutoff + s.params.Skin
	rc2 := rc * rc
	n := &s.nlist
	n.pairs = n.pairs[:0]
	for i := 0; i < len(s.pos); i++ {
		for j := i + 1; j < len(s.pos); j++ {
			d := s.delta(i, j)
			if d[0]*d[0]+d[1]*d[1]+d[2]*d[2] < rc2 {
				n.pairs = append(n.pairs, [2]int{i, j})
			}
		}
	}
	n.ref = append(n.ref[:0], s.pos...)
	n.valid = true
	s.nbuild++
}
