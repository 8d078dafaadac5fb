package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// PoolMarcos es la memoria física: un arreglo de bytes partido en marcos de una página
type PoolMarcos struct {
	memoria    []byte
	libres     []bool // true = libre, false = ocupado
	cantLibres int
	siguiente  int // por dónde seguir buscando
}

// NuevoPoolMarcos crea la memoria física con tamMemoria bytes (se descarta el resto de la última página)
func NuevoPoolMarcos(tamMemoria int) *PoolMarcos {
	totalMarcos := tamMemoria / utils.TamPagina
	if totalMarcos < 0 {
		totalMarcos = 0
	}

	pool := &PoolMarcos{
		memoria:    make([]byte, totalMarcos*utils.TamPagina),
		libres:     make([]bool, totalMarcos),
		cantLibres: totalMarcos,
	}
	for i := range pool.libres {
		pool.libres[i] = true
	}

	utils.InfoLog.Info("Memoria física inicializada", "tamaño_bytes", len(pool.memoria), "total_marcos", totalMarcos)
	return pool
}

// Asignar toma un marco libre y lo deja en cero
func (p *PoolMarcos) Asignar() (int, error) {
	if p.cantLibres == 0 {
		return 0, fmt.Errorf("%w: %d marcos en uso", ErrRecursosAgotados, len(p.libres))
	}

	total := len(p.libres)
	for n := 0; n < total; n++ {
		i := (p.siguiente + n) % total
		if !p.libres[i] {
			continue
		}
		p.libres[i] = false
		p.cantLibres--
		p.siguiente = (i + 1) % total
		clear(p.Pagina(i))
		utils.InfoLog.Debug("Marco asignado", "marco", i, "marcos_libres", p.cantLibres)
		return i, nil
	}

	kernelPanic("contador de marcos libres inconsistente (%d)", p.cantLibres)
	return 0, nil
}

// Liberar devuelve un marco al pool. Liberar dos veces el mismo marco corrompe la contabilidad.
func (p *PoolMarcos) Liberar(marco int) {
	if marco < 0 || marco >= len(p.libres) {
		kernelPanic("liberación de marco fuera de rango: %d", marco)
	}
	if p.libres[marco] {
		kernelPanic("doble liberación del marco %d", marco)
	}
	p.libres[marco] = true
	p.cantLibres++
	utils.InfoLog.Debug("Marco liberado", "marco", marco, "marcos_libres", p.cantLibres)
}

// Libres devuelve la cantidad de marcos disponibles
func (p *PoolMarcos) Libres() int {
	return p.cantLibres
}

// Total devuelve la cantidad de marcos del pool (el techo de memoria física)
func (p *PoolMarcos) Total() int {
	return len(p.libres)
}

// Pagina devuelve los bytes del marco
func (p *PoolMarcos) Pagina(marco int) []byte {
	inicio := marco * utils.TamPagina
	return p.memoria[inicio : inicio+utils.TamPagina]
}
