package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// sysMmap crea un mapeo anónimo de [inicio, inicio+largo) con los permisos de prot.
// Es todo o nada: ante Conflicto o falta de marcos la tabla queda como estaba.
// flag y fd se aceptan y se ignoran.
func (k *Kernel) sysMmap(t *Tarea, inicio, largo, prot, _ uint64, _ int64) error {
	if inicio%utils.TamPagina != 0 {
		return fmt.Errorf("%w: inicio %#x no alineado", ErrArgumentoInvalido, inicio)
	}
	if largo > utils.MaxLargoMapeo {
		return fmt.Errorf("%w: largo %d mayor a 1GiB", ErrArgumentoInvalido, largo)
	}
	if prot&^protValidos != 0 || prot == 0 {
		return fmt.Errorf("%w: prot %#x", ErrArgumentoInvalido, prot)
	}
	if largo == 0 {
		return nil
	}
	fin := inicio + largo
	if fin < inicio || fin > maxVA {
		return fmt.Errorf("%w: [%#x, %#x) fuera del espacio de usuario", ErrArgumentoInvalido, inicio, fin)
	}

	permisos := permisosDesdeProt(prot) | pteUsuario
	if err := t.Tabla.mapearAnonimo(inicio, redondearArriba(fin), permisos); err != nil {
		return err
	}
	t.Metricas.PaginasMapeadas += int((redondearArriba(fin) - inicio) / utils.TamPagina)

	utils.InfoLog.Info(fmt.Sprintf("## (%d) - mmap [%#x, %#x) prot %#x", t.PID, inicio, fin, prot),
		"paginas", redondearArriba(largo)/utils.TamPagina,
		"marcos_libres", k.pool.Libres())
	return nil
}

// sysMunmap quita los mapeos de las páginas que cubren [inicio, inicio+largo).
// Los huecos se saltean; nunca falla para una tabla sana.
func (k *Kernel) sysMunmap(t *Tarea, inicio, largo uint64) error {
	if largo == 0 {
		return nil
	}
	desde := redondearAbajo(inicio)
	if desde >= maxVA {
		return nil
	}
	hasta := maxVA
	if fin := inicio + largo; fin >= inicio && fin < maxVA {
		hasta = redondearArriba(fin)
	}

	liberadas := t.Tabla.desmapearRango(desde, hasta)
	t.Metricas.PaginasLiberadas += liberadas
	utils.InfoLog.Info(fmt.Sprintf("## (%d) - munmap [%#x, %#x)", t.PID, desde, hasta),
		"paginas_liberadas", liberadas,
		"marcos_libres", k.pool.Libres())
	return nil
}

// mapearAnonimo instala una hoja con marco propio por cada página de [desde, hasta).
// Ambos extremos están alineados a página.
func (tp *TablaPaginas) mapearAnonimo(desde, hasta uint64, permisos pte) error {
	for va := desde; va < hasta; va += utils.TamPagina {
		if tp.Entrada(va).valida() {
			return fmt.Errorf("%w: va %#x", ErrConflicto, va)
		}
	}

	for va := desde; va < hasta; va += utils.TamPagina {
		entrada, err := tp.recorrer(va, true)
		if err == nil {
			var marco int
			if marco, err = tp.pool.Asignar(); err == nil {
				*entrada = pteDesdeMarco(marco) | permisos | pteValida
				continue
			}
		}
		tp.desmapearRango(desde, va)
		return err
	}
	return nil
}

// desmapearRango libera las hojas de [desde, hasta) y las tablas que queden vacías.
// Devuelve la cantidad de páginas liberadas.
func (tp *TablaPaginas) desmapearRango(desde, hasta uint64) int {
	liberadas := 0
	for va := desde; va < hasta; {
		entrada, err := tp.recorrer(va, false)
		if err != nil {
			break
		}
		if entrada == nil {
			// Sin tabla de último nivel: saltar al próximo bloque que cubre otra tabla
			va = (va | (entradasPorTabla*utils.TamPagina - 1)) + 1
			continue
		}
		if entrada.valida() {
			if !entrada.esHoja() {
				kernelPanic("munmap: entrada no hoja en va %#x (%#x)", va, uint64(*entrada))
			}
			tp.pool.Liberar(entrada.marco())
			*entrada = 0
			liberadas++
		}
		va += utils.TamPagina
	}
	tp.liberarTablasVacias()
	return liberadas
}
