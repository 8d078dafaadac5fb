package main

import "time"

// Reloj es la fuente del contador de ciclos (rdtime)
type Reloj interface {
	Ciclos() uint64
}

// relojMonotonico cuenta ciclos a partir del reloj monotónico del host
type relojMonotonico struct {
	inicio     time.Time
	frecuencia uint64
}

func nuevoRelojMonotonico(frecuencia uint64) *relojMonotonico {
	return &relojMonotonico{inicio: time.Now(), frecuencia: frecuencia}
}

func (r *relojMonotonico) Ciclos() uint64 {
	d := time.Since(r.inicio)
	segundos := uint64(d / time.Second)
	resto := uint64(d % time.Second)
	return segundos*r.frecuencia + resto*r.frecuencia/uint64(time.Second)
}
