package sim

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
)

func TestEnsembleRun(t *testing.T) {
	g := NewWithT(t)
	reporters := make([]*testReporter, 4)
	for i := range reporters {
		reporters[i] = &testReporter{}
	}

	ens := NewEnsemble(4, func(i int) (*Loop, error) {
		return New(&testHost{}, reporters[i]), nil
	})
	results, err := ens.Run(context.Background(), Config{Steps: 6, Every: 3})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(4))
	for i, r := range results {
		g.Expect(r.Rows).To(Equal(3))
		g.Expect(reporters[i].steps).To(Equal([]int64{0, 3, 6}))
	}
}

func TestEnsembleBuildError(t *testing.T) {
	g := NewWithT(t)
	boom := errors.New("no system")
	ens := NewEnsemble(3, func(i int) (*Loop, error) {
		if i == 1 {
			return nil, boom
		}
		return New(&testHost{}, &testReporter{}), nil
	})
	_, err := ens.Run(context.Background(), Config{Steps: 2})
	g.Expect(err).To(MatchError(boom))
}
