package thermo

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestRegistryBindIsIdempotent(t *testing.T) {
	g := NewWithT(t)
	reg := NewRegistry(testEnv())

	a, err := reg.Bind(RoleCompute, "com", KindVector)
	g.Expect(err).NotTo(HaveOccurred())
	b, err := reg.Bind(RoleCompute, "com", KindVector)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(b).To(Equal(a))
	g.Expect(reg.Len()).To(Equal(1))

	c, err := reg.Bind(RoleCompute, DefaultPressureID, KindScalar)
	g.Expect(err).NotTo(HaveOccurred())
	d, err := reg.Bind(RoleCompute, DefaultPressureID, KindVector)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c).NotTo(Equal(d))
	g.Expect(reg.Len()).To(Equal(3))
	g.Expect(reg.Binding(d).Name()).To(Equal("c_thermo_press"))
}

func TestRegistryBindErrors(t *testing.T) {
	tests := []struct {
		name string
		role Role
		id   string
		kind Kind
		want error
	}{
		{"missing compute", RoleCompute, "nope", KindScalar, ErrProviderNotFound},
		{"missing fix", RoleFix, "com", KindScalar, ErrProviderNotFound},
		{"no scalar", RoleCompute, "com", KindScalar, ErrWrongKind},
		{"no array", RoleCompute, "com", KindArray, ErrWrongKind},
		{"no vector", RoleVariable, "x", KindVector, ErrWrongKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			reg := NewRegistry(testEnv())
			_, err := reg.Bind(tt.role, tt.id, tt.kind)
			g.Expect(err).To(MatchError(tt.want))
			g.Expect(IsConfig(err)).To(BeTrue())
			g.Expect(reg.Len()).To(BeZero())
		})
	}
}

func TestRegistryRefresh(t *testing.T) {
	g := NewWithT(t)
	env := testEnv()
	reg := NewRegistry(env)

	idx, err := reg.Bind(RoleCompute, "com", KindVector)
	g.Expect(err).NotTo(HaveOccurred())

	replacement := &fakeProvider{vector: []float64{9, 9, 9}}
	env.Add(RoleCompute, "com", replacement)
	g.Expect(reg.Refresh([]int{idx})).To(Succeed())
	p, err := reg.Provider(idx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p).To(BeIdenticalTo(replacement))

	env.Remove(RoleCompute, "com")
	g.Expect(reg.Refresh([]int{idx})).To(MatchError(ErrProviderNotFound))

	// Bindings not in use are dropped without being looked up.
	g.Expect(reg.Refresh(nil)).To(Succeed())
}
