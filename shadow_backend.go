package dprtlib

import "github.com/joeycumines/go-dprtlib/shadowmem"

func shadowBackend(name string) shadowmem.Backend {
	if name == "dense" {
		return shadowmem.BackendDense
	}
	return shadowmem.BackendSparse
}

func newShadow(backend shadowmem.Backend, leafBits uint) shadowmem.Shadow {
	return shadowmem.New(backend, leafBits)
}
