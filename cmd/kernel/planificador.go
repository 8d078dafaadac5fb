package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// Planificador es el colaborador que suspende, reanuda y destruye tareas.
// En un solo núcleo hay exactamente una tarea en ejecución.
type Planificador interface {
	Admitir(t *Tarea)
	Ejecutar(t *Tarea)
	Ceder(t *Tarea)
	Finalizar(t *Tarea, codigo int)
	Actual() *Tarea
}

// planificadorFIFO mantiene la cola de listos y la tarea actual
type planificadorFIFO struct {
	colaReady []*Tarea
	actual    *Tarea
	liberar   func(t *Tarea)
}

func nuevoPlanificadorFIFO(liberar func(t *Tarea)) *planificadorFIFO {
	return &planificadorFIFO{liberar: liberar}
}

func cambiarEstado(t *Tarea, nuevo EstadoTarea) {
	if t.Estado == nuevo {
		return
	}
	anterior := t.Estado
	t.Estado = nuevo
	utils.InfoLog.Info(fmt.Sprintf("## (%d) - Pasa del estado %s al estado %s", t.PID, anterior, nuevo))
}

func (p *planificadorFIFO) Admitir(t *Tarea) {
	cambiarEstado(t, TareaLista)
	p.colaReady = append(p.colaReady, t)
}

// Ejecutar hace el cambio de contexto hacia t. La tarea que estaba en el núcleo vuelve a READY.
func (p *planificadorFIFO) Ejecutar(t *Tarea) {
	if p.actual == t && t.Estado == TareaEjecutando {
		return
	}
	if p.actual != nil && p.actual.Estado == TareaEjecutando {
		p.Admitir(p.actual)
	}
	p.quitarDeReady(t)
	cambiarEstado(t, TareaEjecutando)
	p.actual = t
}

// Ceder manda t al final de la cola y despacha a la primera tarea lista
func (p *planificadorFIFO) Ceder(t *Tarea) {
	if p.actual == t {
		p.actual = nil
	}
	p.Admitir(t)
	p.Ejecutar(p.colaReady[0])
}

// Finalizar destruye la tarea; nunca vuelve a ejecutar
func (p *planificadorFIFO) Finalizar(t *Tarea, codigo int) {
	p.quitarDeReady(t)
	if p.actual == t {
		p.actual = nil
	}
	t.CodigoSalida = codigo
	cambiarEstado(t, TareaFinalizada)
	if p.liberar != nil {
		p.liberar(t)
	}
	utils.InfoLog.Info(fmt.Sprintf("## (%d) - Finaliza el proceso - Código: %d", t.PID, codigo))
}

// Actual devuelve la tarea que ocupa el núcleo
func (p *planificadorFIFO) Actual() *Tarea {
	return p.actual
}

func (p *planificadorFIFO) quitarDeReady(t *Tarea) {
	for i, candidata := range p.colaReady {
		if candidata == t {
			p.colaReady = append(p.colaReady[:i], p.colaReady[i+1:]...)
			return
		}
	}
}
