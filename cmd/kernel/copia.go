package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// resolverUsuario traduce una dirección de usuario y devuelve los bytes del
// marco desde va hasta el fin de la página. La entrada tiene que ser válida y
// de usuario, y además llevar los bits de requeridos.
func (tp *TablaPaginas) resolverUsuario(va uint64, requeridos pte) ([]byte, error) {
	if va >= maxVA {
		return nil, fmt.Errorf("%w: %#x", ErrDireccionInvalida, va)
	}
	entrada, err := tp.recorrer(va, false)
	if err != nil {
		return nil, err
	}
	if entrada == nil || !entrada.valida() || *entrada&pteUsuario == 0 {
		return nil, fmt.Errorf("%w: %#x no mapeada", ErrDireccionInvalida, va)
	}
	if *entrada&requeridos != requeridos {
		return nil, fmt.Errorf("%w: %#x sin permiso %#x", ErrDireccionInvalida, va, uint64(requeridos))
	}

	pagina := tp.pool.Pagina(entrada.marco())
	return pagina[va%utils.TamPagina:], nil
}

// tramosUsuario resuelve [va, va+largo) página por página antes de tocar nada,
// así una copia que falla no deja escrituras a medias.
func (tp *TablaPaginas) tramosUsuario(va uint64, largo int, requeridos pte) ([][]byte, error) {
	if largo < 0 || va+uint64(largo) < va {
		return nil, fmt.Errorf("%w: rango %#x+%d", ErrDireccionInvalida, va, largo)
	}

	var tramos [][]byte
	for restante := largo; restante > 0; {
		tramo, err := tp.resolverUsuario(va, requeridos)
		if err != nil {
			return nil, err
		}
		if len(tramo) > restante {
			tramo = tramo[:restante]
		}
		tramos = append(tramos, tramo)
		restante -= len(tramo)
		va += uint64(len(tramo))
	}
	return tramos, nil
}

func escribirTramos(tramos [][]byte, src []byte) {
	for _, tramo := range tramos {
		n := copy(tramo, src)
		src = src[n:]
	}
}

func leerTramos(dst []byte, tramos [][]byte) {
	for _, tramo := range tramos {
		n := copy(dst, tramo)
		dst = dst[n:]
	}
}

// copiarHaciaUsuario copia src a la dirección virtual dst de la tarea.
// El kernel solo pide que la memoria sea de usuario, no mira R/W/X.
func copiarHaciaUsuario(tp *TablaPaginas, dst uint64, src []byte) error {
	tramos, err := tp.tramosUsuario(dst, len(src), 0)
	if err != nil {
		return err
	}
	escribirTramos(tramos, src)
	return nil
}

// copiarDesdeUsuario llena dst con los bytes que empiezan en la dirección virtual src
func copiarDesdeUsuario(tp *TablaPaginas, dst []byte, src uint64) error {
	tramos, err := tp.tramosUsuario(src, len(dst), 0)
	if err != nil {
		return err
	}
	leerTramos(dst, tramos)
	return nil
}

// storeUsuario es un store de la propia tarea: la página tiene que ser escribible
func storeUsuario(tp *TablaPaginas, va uint64, datos []byte) error {
	tramos, err := tp.tramosUsuario(va, len(datos), pteEscritura)
	if err != nil {
		return err
	}
	escribirTramos(tramos, datos)
	return nil
}

// loadUsuario es un load de la propia tarea: la página tiene que ser legible
func loadUsuario(tp *TablaPaginas, datos []byte, va uint64) error {
	tramos, err := tp.tramosUsuario(va, len(datos), pteLectura)
	if err != nil {
		return err
	}
	leerTramos(datos, tramos)
	return nil
}

// copiarCadenaDesdeUsuario copia hasta limite bytes o hasta el primer NUL.
// El NUL no forma parte del resultado.
func copiarCadenaDesdeUsuario(tp *TablaPaginas, src uint64, limite int) ([]byte, error) {
	cadena := make([]byte, 0, limite)
	for len(cadena) < limite {
		tramo, err := tp.resolverUsuario(src, 0)
		if err != nil {
			return nil, err
		}
		if falta := limite - len(cadena); len(tramo) > falta {
			tramo = tramo[:falta]
		}
		for _, c := range tramo {
			if c == 0 {
				return cadena, nil
			}
			cadena = append(cadena, c)
		}
		src += uint64(len(tramo))
	}
	return cadena, nil
}
