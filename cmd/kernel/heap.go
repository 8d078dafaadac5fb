package main

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

// sysSbrk mueve el break y devuelve el valor que tenía antes
func (k *Kernel) sysSbrk(t *Tarea, delta int64) (uint64, error) {
	anterior := t.Break
	if err := k.crecerHeap(t, delta); err != nil {
		return 0, err
	}
	return anterior, nil
}

// crecerHeap es el colaborador de crecimiento: mapea o desmapea páginas enteras
// entre el break viejo y el nuevo. Si falla el break queda igual.
func (k *Kernel) crecerHeap(t *Tarea, delta int64) error {
	if delta < 0 && uint64(-delta) > t.Break-t.BaseHeap {
		return fmt.Errorf("%w: el break no puede bajar de %#x", ErrArgumentoInvalido, t.BaseHeap)
	}
	nuevo := t.Break + uint64(delta)
	if delta > 0 && (nuevo < t.Break || nuevo >= maxVA) {
		return fmt.Errorf("%w: break %#x fuera del espacio de usuario", ErrRecursosAgotados, nuevo)
	}

	limiteViejo := redondearArriba(t.Break)
	limiteNuevo := redondearArriba(nuevo)
	switch {
	case limiteNuevo > limiteViejo:
		permisos := pteLectura | pteEscritura | pteUsuario
		if err := t.Tabla.mapearAnonimo(limiteViejo, limiteNuevo, permisos); err != nil {
			return err
		}
		t.Metricas.PaginasMapeadas += int((limiteNuevo - limiteViejo) / utils.TamPagina)
	case limiteNuevo < limiteViejo:
		t.Metricas.PaginasLiberadas += t.Tabla.desmapearRango(limiteNuevo, limiteViejo)
	}

	utils.InfoLog.Debug("Break actualizado", "pid", t.PID, "anterior", fmt.Sprintf("%#x", t.Break), "nuevo", fmt.Sprintf("%#x", nuevo))
	t.Break = nuevo
	return nil
}
