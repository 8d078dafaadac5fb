package main

import (
	"fmt"

	"github.com/fogleman/gg"
)

const (
	columnasMapa = 32
	ladoCelda    = 16
	margenMapa   = 8
	altoTitulo   = 20
)

// dibujarMapa genera un PNG con una celda por página mapeada.
// Rojo = escritura, verde = lectura, azul = ejecución.
func dibujarMapa(ruta string, pid int, paginas []PaginaMapeada) error {
	filas := (len(paginas) + columnasMapa - 1) / columnasMapa
	if filas == 0 {
		filas = 1
	}
	ancho := 2*margenMapa + columnasMapa*ladoCelda
	alto := 2*margenMapa + altoTitulo + filas*ladoCelda

	dc := gg.NewContext(ancho, alto)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("PID %d - %d paginas", pid, len(paginas)), margenMapa, margenMapa+12)

	for i, pagina := range paginas {
		x := float64(margenMapa + (i%columnasMapa)*ladoCelda)
		y := float64(margenMapa + altoTitulo + (i/columnasMapa)*ladoCelda)
		dc.SetRGB(componente(pagina.Permisos, pteEscritura), componente(pagina.Permisos, pteLectura), componente(pagina.Permisos, pteEjecucion))
		dc.DrawRectangle(x, y, ladoCelda-1, ladoCelda-1)
		dc.Fill()
	}

	if err := dc.SavePNG(ruta); err != nil {
		return fmt.Errorf("error al guardar mapa %s: %w", ruta, err)
	}
	return nil
}

func componente(permisos, bit pte) float64 {
	if permisos&bit != 0 {
		return 0.9
	}
	return 0.2
}
