package utils

// Semaforo implementa un semáforo contador con canales.
// Con capacidad 1 se usa como el único núcleo de la máquina simulada.
type Semaforo struct {
	c chan struct{}
}

// NewSemaforo crea un semáforo con capacidad inicial
func NewSemaforo(capacidad int) *Semaforo {
	if capacidad <= 0 {
		capacidad = 1
	}
	return &Semaforo{
		c: make(chan struct{}, capacidad),
	}
}

// Wait (P) ocupa un lugar del semáforo, bloquea si no quedan
func (s *Semaforo) Wait() {
	s.c <- struct{}{}
}

// Signal (V) libera un lugar del semáforo
func (s *Semaforo) Signal() {
	select {
	case <-s.c:
	default:
		// Nada ocupado, no hace nada para prevenir incremento excesivo
	}
}

// TryWait intenta ocupar un lugar sin bloquear
func (s *Semaforo) TryWait() bool {
	select {
	case s.c <- struct{}{}:
		return true
	default:
		return false
	}
}

// Seccion ejecuta f ocupando el semáforo, incluso si f entra en pánico
func (s *Semaforo) Seccion(f func()) {
	s.Wait()
	defer s.Signal()
	f()
}
