package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// MetricasTarea acumula la actividad de memoria de una tarea hasta su destrucción
type MetricasTarea struct {
	PaginasMapeadas   int
	PaginasLiberadas  int
	LecturasMemoria   int
	EscriturasMemoria int
	FallosPagina      int
}

func (m *MetricasTarea) registrarAcceso(escritura bool, err error) {
	if err != nil {
		m.FallosPagina++
		return
	}
	if escritura {
		m.EscriturasMemoria++
	} else {
		m.LecturasMemoria++
	}
}

func (m *MetricasTarea) loguear(pid int) {
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Proceso Destruido - Métricas: Map;%d;Unmap;%d;LecMem;%d;EscMem;%d;Fallos;%d",
		pid,
		m.PaginasMapeadas,
		m.PaginasLiberadas,
		m.LecturasMemoria,
		m.EscriturasMemoria,
		m.FallosPagina))
}
