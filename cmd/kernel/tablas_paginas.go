package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// pte es una entrada de tabla de páginas: bits de control abajo, número de marco desde el bit 10
type pte uint64

const (
	pteValida    pte = 1 << 0
	pteLectura   pte = 1 << 1
	pteEscritura pte = 1 << 2
	pteEjecucion pte = 1 << 3
	pteUsuario   pte = 1 << 4

	ptePermisos = pteLectura | pteEscritura | pteEjecucion
	pteFlags    = pte(0x3FF)
)

const (
	nivelesTabla     = 3
	entradasPorTabla = 512
	bitsPagina       = 12
	bitsIndice       = 9

	// Una dirección de usuario debe quedar por debajo de MAXVA
	maxVA uint64 = 1 << (bitsIndice*nivelesTabla + bitsPagina - 1)
)

func pteDesdeMarco(marco int) pte { return pte(uint64(marco) << 10) }
func (e pte) marco() int         { return int(uint64(e) >> 10) }
func (e pte) flags() pte         { return e & pteFlags }
func (e pte) valida() bool       { return e&pteValida != 0 }

// esHoja: solo una entrada con el bit V y nada más apunta a la tabla del siguiente nivel
func (e pte) esHoja() bool { return e.flags() != pteValida }

// protValidos son los bits que acepta el prot de mmap
const protValidos = utils.PermisoLectura | utils.PermisoEscritura | utils.PermisoEjecucion

// permisosDesdeProt traduce el prot de mmap (R, W, X desde el bit 0) a bits de PTE
func permisosDesdeProt(prot uint64) pte { return pte(prot&protValidos) << 1 }

func redondearAbajo(a uint64) uint64 { return a &^ (utils.TamPagina - 1) }
func redondearArriba(a uint64) uint64 {
	return (a + utils.TamPagina - 1) &^ (utils.TamPagina - 1)
}

func indiceEnNivel(nivel int, va uint64) int {
	return int((va >> (bitsPagina + bitsIndice*uint(nivel))) & (entradasPorTabla - 1))
}

type nodoTabla struct {
	entradas [entradasPorTabla]pte
}

// TablaPaginas es el almacén de traducción de una tarea. Cada tabla intermedia
// ocupa un marco del pool; el marco se usa como identificador del nodo.
type TablaPaginas struct {
	pool  *PoolMarcos
	raiz  int
	nodos map[int]*nodoTabla
}

// PaginaMapeada describe una hoja válida, en orden de dirección virtual
type PaginaMapeada struct {
	VA       uint64
	Marco    int
	Permisos pte
}

// NuevaTablaPaginas crea la tabla raíz de una tarea
func NuevaTablaPaginas(pool *PoolMarcos) (*TablaPaginas, error) {
	raiz, err := pool.Asignar()
	if err != nil {
		return nil, fmt.Errorf("no se pudo crear la tabla raíz: %w", err)
	}
	return &TablaPaginas{
		pool:  pool,
		raiz:  raiz,
		nodos: map[int]*nodoTabla{raiz: {}},
	}, nil
}

// recorrer devuelve la entrada de último nivel para va. Con crear=false y sin
// tablas intermedias devuelve nil.
func (tp *TablaPaginas) recorrer(va uint64, crear bool) (*pte, error) {
	if va >= maxVA {
		return nil, fmt.Errorf("%w: va %#x fuera del espacio de usuario", ErrArgumentoInvalido, va)
	}

	nodo := tp.nodos[tp.raiz]
	for nivel := nivelesTabla - 1; nivel > 0; nivel-- {
		entrada := &nodo.entradas[indiceEnNivel(nivel, va)]
		if entrada.valida() {
			if entrada.esHoja() {
				kernelPanic("hoja en nivel %d para va %#x", nivel, va)
			}
			siguiente, existe := tp.nodos[entrada.marco()]
			if !existe {
				kernelPanic("entrada intermedia apunta a un marco sin tabla (%d)", entrada.marco())
			}
			nodo = siguiente
			continue
		}

		if !crear {
			return nil, nil
		}
		marco, err := tp.pool.Asignar()
		if err != nil {
			return nil, err
		}
		tp.nodos[marco] = &nodoTabla{}
		*entrada = pteDesdeMarco(marco) | pteValida
		nodo = tp.nodos[marco]
	}

	return &nodo.entradas[indiceEnNivel(0, va)], nil
}

// Entrada devuelve una copia de la entrada de último nivel para va (0 si no existe)
func (tp *TablaPaginas) Entrada(va uint64) pte {
	entrada, err := tp.recorrer(va, false)
	if err != nil || entrada == nil {
		return 0
	}
	return *entrada
}

// PaginasMapeadas lista todas las hojas válidas en orden ascendente de va
func (tp *TablaPaginas) PaginasMapeadas() []PaginaMapeada {
	var paginas []PaginaMapeada
	tp.visitarHojas(tp.nodos[tp.raiz], nivelesTabla-1, 0, func(va uint64, e pte) {
		paginas = append(paginas, PaginaMapeada{VA: va, Marco: e.marco(), Permisos: e.flags()})
	})
	return paginas
}

func (tp *TablaPaginas) visitarHojas(nodo *nodoTabla, nivel int, base uint64, f func(va uint64, e pte)) {
	for i, entrada := range nodo.entradas {
		if !entrada.valida() {
			continue
		}
		va := base | uint64(i)<<(bitsPagina+bitsIndice*uint(nivel))
		if nivel == 0 {
			f(va, entrada)
			continue
		}
		tp.visitarHojas(tp.nodos[entrada.marco()], nivel-1, va, f)
	}
}

// liberarTablasVacias devuelve al pool las tablas intermedias que ya no tienen entradas válidas
func (tp *TablaPaginas) liberarTablasVacias() {
	tp.podar(tp.nodos[tp.raiz], nivelesTabla-1)
}

func (tp *TablaPaginas) podar(nodo *nodoTabla, nivel int) (vacio bool) {
	vacio = true
	for i := range nodo.entradas {
		entrada := &nodo.entradas[i]
		if !entrada.valida() {
			continue
		}
		if nivel > 0 && !entrada.esHoja() && tp.podar(tp.nodos[entrada.marco()], nivel-1) {
			delete(tp.nodos, entrada.marco())
			tp.pool.Liberar(entrada.marco())
			*entrada = 0
			continue
		}
		vacio = false
	}
	return vacio
}

// Destruir libera todos los marcos de la tarea: hojas, tablas intermedias y raíz
func (tp *TablaPaginas) Destruir() int {
	liberados := 0
	tp.visitarHojas(tp.nodos[tp.raiz], nivelesTabla-1, 0, func(_ uint64, e pte) {
		tp.pool.Liberar(e.marco())
		liberados++
	})
	for marco := range tp.nodos {
		tp.pool.Liberar(marco)
		liberados++
	}
	tp.nodos = nil
	utils.InfoLog.Debug("Tabla de páginas destruida", "marcos_liberados", liberados)
	return liberados
}
