package recipe

import "testing"

func TestMutableRecipeRejectsEmptyVerb(t *testing.T) {
	r := New()
	r.AddParticle("")
	if r.IsValid() {
		t.Fatal("expected recipe with empty-verb particle to be invalid")
	}
}

func TestMutableRecipeRejectsDanglingConnection(t *testing.T) {
	r := New()
	p := r.AddParticle("Reader")
	p.Connections = append(p.Connections, &HandleConnection{Name: "data", Handle: nil, Kind: ConnRead})
	if r.IsValid() {
		t.Fatal("expected recipe with dangling connection to be invalid")
	}
}

func TestNormalizeRejectsInvalidRecipe(t *testing.T) {
	r := New()
	r.AddParticle("")
	if _, err := r.Normalize(); err == nil {
		t.Fatal("expected Normalize to reject an invalid recipe")
	}
}

func TestNormalizeRefusesSecondCall(t *testing.T) {
	r := New()
	r.AddParticle("Reader")
	if _, err := r.Normalize(); err != nil {
		t.Fatalf("first Normalize failed: %v", err)
	}
	if _, err := r.Normalize(); err != errAlreadyFrozen {
		t.Fatalf("expected errAlreadyFrozen on second call, got %v", err)
	}
}

// TestTwoParticleHandleWiring exercises the scenario of two particles,
// Reader and Writer, connected through a single handle H: normalization
// orders particles by their smallest connection name ("input" before
// "output"), independent of arena add order, and isResolved requires
// every handle to have a fate.
func TestTwoParticleHandleWiring(t *testing.T) {
	r := New()
	h := r.AddHandle(FateUnknown)
	writer := r.AddParticle("Writer")
	reader := r.AddParticle("Reader")
	r.Connect(writer, "output", h, ConnWrite)
	r.Connect(reader, "input", h, ConnRead)

	frozen, err := r.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if frozen.IsResolved() {
		t.Fatal("expected recipe with an unfated handle to not be resolved")
	}

	particles := frozen.Particles()
	if len(particles) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(particles))
	}
	if particles[0].Verb != "Reader" || particles[1].Verb != "Writer" {
		t.Fatalf("unexpected particle order: %s, %s", particles[0].Verb, particles[1].Verb)
	}
}

// TestFrozenRecipeIsResolvedOnceEveryHandleHasAFateAndEveryConnectionBinds
// is the positive counterpart to TestTwoParticleHandleWiring: once H
// carries a concrete fate, the same two-particle wiring normalizes to a
// resolved recipe.
func TestFrozenRecipeIsResolvedOnceEveryHandleHasAFateAndEveryConnectionBinds(t *testing.T) {
	r := New()
	h := r.AddHandle(FateCreate)
	writer := r.AddParticle("Writer")
	reader := r.AddParticle("Reader")
	r.Connect(writer, "output", h, ConnWrite)
	r.Connect(reader, "input", h, ConnRead)

	frozen, err := r.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !frozen.IsResolved() {
		t.Fatal("expected recipe with a fated handle and bound connections to be resolved")
	}
}

func TestNormalizeSortsInterfaceTypedConnectionsLast(t *testing.T) {
	r := New()
	h1 := r.AddHandle(FateCreate)
	h2 := r.AddHandle(FateCreate)
	p := r.AddParticle("Mixed")
	c1 := r.Connect(p, "aa", h1, ConnRead)
	c1.InterfaceTyped = true
	r.Connect(p, "zz", h2, ConnRead)

	frozen, err := r.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	conns := frozen.Particles()[0].Connections
	if len(conns) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(conns))
	}
	if conns[0].Name != "zz" || conns[1].Name != "aa" {
		t.Fatalf("expected interface-typed connection last, got order %q, %q", conns[0].Name, conns[1].Name)
	}
}

func TestToStringIsStableAcrossEquivalentBuildOrder(t *testing.T) {
	build := func(firstWriter bool) *FrozenRecipe {
		r := New()
		h := r.AddHandle(FateCreate)
		var a, b *Particle
		if firstWriter {
			a = r.AddParticle("Writer")
			b = r.AddParticle("Reader")
			r.Connect(a, "output", h, ConnWrite)
			r.Connect(b, "input", h, ConnRead)
		} else {
			b = r.AddParticle("Reader")
			a = r.AddParticle("Writer")
			r.Connect(a, "output", h, ConnWrite)
			r.Connect(b, "input", h, ConnRead)
		}
		frozen, err := r.Normalize()
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		return frozen
	}
	s1 := build(true).ToString()
	s2 := build(false).ToString()
	if s1 != s2 {
		t.Fatalf("expected stable toString regardless of particle add order:\n%s\n---\n%s", s1, s2)
	}
}

func TestDigestStableForEquivalentRecipes(t *testing.T) {
	mk := func() *FrozenRecipe {
		r := New()
		h := r.AddHandle(FateCreate)
		p := r.AddParticle("Reader")
		r.Connect(p, "input", h, ConnRead)
		frozen, err := r.Normalize()
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		return frozen
	}
	d1 := mk().Digest()
	d2 := mk().Digest()
	if d1 != d2 {
		t.Fatalf("expected stable digest, got %q vs %q", d1, d2)
	}
	if len(d1) != 64 {
		t.Fatalf("expected 64-char hex sha256 digest, got %d chars", len(d1))
	}
}

func TestCloneProducesIndependentCopy(t *testing.T) {
	r := New()
	h := r.AddHandle(FateCreate)
	p := r.AddParticle("Reader")
	r.Connect(p, "input", h, ConnRead)

	clone, _ := r.Clone()
	clone.AddParticle("Extra")

	if len(r.particles) != 1 {
		t.Fatalf("expected original recipe unaffected by clone mutation, got %d particles", len(r.particles))
	}
	if len(clone.particles) != 2 {
		t.Fatalf("expected clone to have 2 particles, got %d", len(clone.particles))
	}
}

func TestMergeIntoAppendsNodesFromOther(t *testing.T) {
	base := New()
	base.AddParticle("Base")

	other := New()
	h := other.AddHandle(FateCreate)
	p := other.AddParticle("Extra")
	other.Connect(p, "input", h, ConnRead)

	newParticles, newHandles, _ := base.MergeInto(other)
	if len(newParticles) != 1 || len(newHandles) != 1 {
		t.Fatalf("expected 1 new particle and 1 new handle, got %d/%d", len(newParticles), len(newHandles))
	}
	if len(base.particles) != 2 {
		t.Fatalf("expected base to now hold 2 particles, got %d", len(base.particles))
	}
}
