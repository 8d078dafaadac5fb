package main

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-LosCuervosXeneizes/utils"
)

type snapshot struct {
	paginas []PaginaMapeada
	libres  int
}

func tomarSnapshot(k *Kernel, tarea *Tarea) snapshot {
	return snapshot{paginas: tarea.Tabla.PaginasMapeadas(), libres: k.pool.Libres()}
}

func TestMmapPermisos(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 128)
	tarea := crearTareaPrueba(t, k, 0)

	for prot := uint64(1); prot <= 7; prot++ {
		inicio := prot * 0x10000
		largo := uint64(3 * utils.TamPagina)
		if err := k.sysMmap(tarea, inicio, largo, prot, 0, -1); err != nil {
			t.Fatalf("mmap prot %d: %v", prot, err)
		}
		for va := inicio; va < inicio+largo; va += utils.TamPagina {
			e := tarea.Tabla.Entrada(va)
			if !e.valida() || e&pteUsuario == 0 {
				t.Errorf("prot %d: página %#x no es válida de usuario (%#x)", prot, va, uint64(e))
			}
			if got := uint64(e&ptePermisos) >> 1; got != prot {
				t.Errorf("prot %d: página %#x tiene permisos %d", prot, va, got)
			}
		}
	}
}

func TestMmapLargoNoMultiploDePagina(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 32)
	tarea := crearTareaPrueba(t, k, 0)

	if err := k.sysMmap(tarea, 0x20000, 5000, 3, 0, -1); err != nil {
		t.Fatal(err)
	}
	if got := len(tarea.Tabla.PaginasMapeadas()); got != 2 {
		t.Errorf("páginas mapeadas = %d, se esperaban 2", got)
	}
	if tarea.Tabla.Entrada(0x22000).valida() {
		t.Error("se mapeó una página de más")
	}
}

func TestMmapLargoCero(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 32)
	tarea := crearTareaPrueba(t, k, 0)
	if err := k.sysMmap(tarea, 0x1000, utils.TamPagina, 3, 0, -1); err != nil {
		t.Fatal(err)
	}

	antes := tomarSnapshot(k, tarea)
	for _, inicio := range []uint64{0x1000, 0x7000} {
		if err := k.sysMmap(tarea, inicio, 0, 3, 0, -1); err != nil {
			t.Errorf("mmap(%#x, 0): %v", inicio, err)
		}
	}
	if despues := tomarSnapshot(k, tarea); !reflect.DeepEqual(antes, despues) {
		t.Errorf("mmap con largo 0 cambió el estado:\nantes   %+v\ndespués %+v", antes, despues)
	}
}

func TestMmapArgumentosInvalidos(t *testing.T) {
	tests := []struct {
		name   string
		inicio uint64
		largo  uint64
		prot   uint64
	}{
		{"inicio no alineado", 0x1001, utils.TamPagina, 3},
		{"largo mayor a 1GiB", 0x1000, utils.MaxLargoMapeo + utils.TamPagina, 3},
		{"prot cero", 0x1000, utils.TamPagina, 0},
		{"prot con bit 3", 0x1000, utils.TamPagina, 8},
		{"prot con bits altos", 0x1000, utils.TamPagina, 0x13},
		{"fuera del espacio de usuario", maxVA - utils.TamPagina, 2 * utils.TamPagina, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, _, _ := nuevoKernelPrueba(t, 32)
			tarea := crearTareaPrueba(t, k, 0)
			antes := tomarSnapshot(k, tarea)

			err := k.sysMmap(tarea, tt.inicio, tt.largo, tt.prot, 0, -1)
			if !errors.Is(err, ErrArgumentoInvalido) {
				t.Fatalf("err = %v, se esperaba ErrArgumentoInvalido", err)
			}
			if despues := tomarSnapshot(k, tarea); !reflect.DeepEqual(antes, despues) {
				t.Error("un mmap inválido cambió el estado")
			}
		})
	}
}

func TestMmapConflictoNoDejaMapeosParciales(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 32)
	tarea := crearTareaPrueba(t, k, 0)
	if err := k.sysMmap(tarea, 0x3000, utils.TamPagina, 1, 0, -1); err != nil {
		t.Fatal(err)
	}
	antes := tomarSnapshot(k, tarea)

	err := k.sysMmap(tarea, 0x1000, 4*utils.TamPagina, 3, 0, -1)
	if !errors.Is(err, ErrConflicto) {
		t.Fatalf("err = %v, se esperaba ErrConflicto", err)
	}
	if despues := tomarSnapshot(k, tarea); !reflect.DeepEqual(antes, despues) {
		t.Errorf("el conflicto dejó cambios:\nantes   %+v\ndespués %+v", antes, despues)
	}
	if e := tarea.Tabla.Entrada(0x3000); e&ptePermisos != pteLectura {
		t.Errorf("la página existente cambió de permisos: %#x", uint64(e))
	}
}

func TestMmapSinMarcosHaceRollback(t *testing.T) {
	// raíz + 2 intermedias + 5 hojas posibles
	k, _, _ := nuevoKernelPrueba(t, 8)
	tarea := crearTareaPrueba(t, k, 0)
	antes := tomarSnapshot(k, tarea)

	err := k.sysMmap(tarea, 0x1000, 10*utils.TamPagina, 3, 0, -1)
	if !errors.Is(err, ErrRecursosAgotados) {
		t.Fatalf("err = %v, se esperaba ErrRecursosAgotados", err)
	}
	if despues := tomarSnapshot(k, tarea); !reflect.DeepEqual(antes, despues) {
		t.Errorf("el rollback no restauró el estado:\nantes   %+v\ndespués %+v", antes, despues)
	}

	// el pool sigue sirviendo
	if err := k.sysMmap(tarea, 0x1000, 5*utils.TamPagina, 3, 0, -1); err != nil {
		t.Errorf("mmap que entra justo: %v", err)
	}
	if k.pool.Libres() != 0 {
		t.Errorf("marcos libres = %d, se esperaba 0", k.pool.Libres())
	}
}

func TestMunmap(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 64)
	tarea := crearTareaPrueba(t, k, 0)
	base := tomarSnapshot(k, tarea)

	// mapeos con huecos
	for _, inicio := range []uint64{0x10000, 0x12000, 0x14000} {
		if err := k.sysMmap(tarea, inicio, utils.TamPagina, 3, 0, -1); err != nil {
			t.Fatal(err)
		}
	}

	if err := k.sysMunmap(tarea, 0x10000, 0x4000); err != nil {
		t.Fatalf("munmap: %v", err)
	}
	for _, va := range []uint64{0x10000, 0x12000} {
		if tarea.Tabla.Entrada(va).valida() {
			t.Errorf("%#x sigue mapeada", va)
		}
	}
	if !tarea.Tabla.Entrada(0x14000).valida() {
		t.Error("munmap quitó una página fuera del rango")
	}

	// inicio y largo sin alinear cubren la página completa
	if err := k.sysMunmap(tarea, 0x14800, 0x10); err != nil {
		t.Fatal(err)
	}
	if despues := tomarSnapshot(k, tarea); !reflect.DeepEqual(base, despues) {
		t.Errorf("munmap no devolvió los marcos:\nbase    %+v\ndespués %+v", base, despues)
	}
	if tarea.Metricas.PaginasMapeadas != 3 || tarea.Metricas.PaginasLiberadas != 3 {
		t.Errorf("métricas = %+v", tarea.Metricas)
	}
}

func TestMunmapSinPaginasNoCambiaNada(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 32)
	tarea := crearTareaPrueba(t, k, 0)
	if err := k.sysMmap(tarea, 0x1000, utils.TamPagina, 3, 0, -1); err != nil {
		t.Fatal(err)
	}
	antes := tomarSnapshot(k, tarea)

	tests := []struct {
		inicio, largo uint64
	}{
		{0x100000, 0x10000},
		{0x40000000, utils.MaxLargoMapeo},
		{0x5000, 0},
		{maxVA, utils.TamPagina},
		{maxVA - utils.TamPagina, 1 << 40},
	}
	for _, tt := range tests {
		if err := k.sysMunmap(tarea, tt.inicio, tt.largo); err != nil {
			t.Errorf("munmap(%#x, %#x): %v", tt.inicio, tt.largo, err)
		}
	}
	if despues := tomarSnapshot(k, tarea); !reflect.DeepEqual(antes, despues) {
		t.Error("munmap sobre huecos cambió el estado")
	}
}

func TestMunmapYMmapReusanMarcos(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 16)
	crearTareaPrueba(t, k, 0)

	for i := 0; i < 10; i++ {
		if ret := invocar(t, k, 0, utils.SyscallMmap, 0x1000, 8*utils.TamPagina, 3, 0, menosUno); ret != 0 {
			t.Fatalf("iteración %d: mmap = %d", i, ret)
		}
		if ret := invocar(t, k, 0, utils.SyscallMunmap, 0x1000, 8*utils.TamPagina); ret != 0 {
			t.Fatalf("iteración %d: munmap = %d", i, ret)
		}
	}
	if got := k.MarcosLibres(); got != 15 {
		t.Errorf("marcos libres = %d, se esperaban 15", got)
	}
}

func TestMunmapEntradaNoHojaDetieneLaMaquina(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 32)
	tarea := crearTareaPrueba(t, k, 0)
	if err := k.sysMmap(tarea, 0x1000, utils.TamPagina, 3, 0, -1); err != nil {
		t.Fatal(err)
	}

	// hoja corrupta: solo el bit V, como si apuntara a otra tabla
	entrada, _ := tarea.Tabla.recorrer(0x1000, false)
	*entrada = pteDesdeMarco(entrada.marco()) | pteValida

	esperarPanico(t, func() {
		_ = k.sysMunmap(tarea, 0x1000, utils.TamPagina)
	})
}

func TestMunmapHojaSinPermisosRWX(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 32)
	tarea := crearTareaPrueba(t, k, 0)
	libres := k.pool.Libres()
	if err := k.sysMmap(tarea, 0x1000, utils.TamPagina, 3, 0, -1); err != nil {
		t.Fatal(err)
	}

	// V|U sin R/W/X sigue siendo una hoja
	entrada, _ := tarea.Tabla.recorrer(0x1000, false)
	*entrada &^= ptePermisos
	if !entrada.esHoja() {
		t.Fatalf("la entrada %#x no se considera hoja", uint64(*entrada))
	}

	if err := k.sysMunmap(tarea, 0x1000, utils.TamPagina); err != nil {
		t.Fatal(err)
	}
	if tarea.Tabla.Entrada(0x1000).valida() {
		t.Error("la página sigue mapeada")
	}
	if got := k.pool.Libres(); got != libres {
		t.Errorf("marcos libres = %d, se esperaban %d", got, libres)
	}
}

// Escenarios de ejemplo del ABI a través del despachador
func TestMmapEjemplos(t *testing.T) {
	k, _, _ := nuevoKernelPrueba(t, 32)
	tarea := crearTareaPrueba(t, k, 0)

	if ret := invocar(t, k, 0, utils.SyscallMmap, 0x1000, 4096, 0b011, 0, menosUno); ret != 0 {
		t.Fatalf("mmap(0x1000) = %d", ret)
	}
	e := tarea.Tabla.Entrada(0x1000)
	if !e.valida() || e&pteUsuario == 0 || e&pteLectura == 0 || e&pteEscritura == 0 || e&pteEjecucion != 0 {
		t.Errorf("entrada = %#x, se esperaba V|U|R|W", uint64(e))
	}

	if ret := invocar(t, k, 0, utils.SyscallMmap, 0x1001, 4096, 0b011, 0, menosUno); ret != -1 {
		t.Errorf("mmap no alineado = %d, se esperaba -1", ret)
	}

	if ret := invocar(t, k, 0, utils.SyscallMunmap, 0x1000, 4096); ret != 0 {
		t.Errorf("munmap = %d", ret)
	}
	if ret := invocar(t, k, 0, utils.SyscallMmap, 0x1000, 4096, 0b011, 0, menosUno); ret != 0 {
		t.Errorf("mmap repetido = %d", ret)
	}
	if ret := invocar(t, k, 0, utils.SyscallMmap, 0x1000, 4096, 0b011, 0, menosUno); ret != -1 {
		t.Errorf("mmap sobre página mapeada = %d, se esperaba -1", ret)
	}
}
