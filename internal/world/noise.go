package world

import (
	"math"
)

// Noise - решетчатый шум Перлина с таблицей перестановок.
// Экземпляр создается заново на каждый вызов генерации мира,
// поэтому глобального состояния нет. После Reseed выборка Sample
// не меняет состояние и безопасна для параллельного чтения,
// но Reseed и Sample нельзя вызывать одновременно из разных горутин
// (владелец один - генератор).
type Noise struct {
	perm [512]int
}

// NewNoise создает источник шума, инициализированный указанным сидом
func NewNoise(seed int64) *Noise {
	n := &Noise{}
	n.Reseed(seed)
	return n
}

// Reseed детерминированно перестраивает таблицу перестановок из целого сида.
// Перемешивание - простой линейный конгруэнтный генератор (LCG),
// один и тот же сид всегда дает одну и ту же таблицу.
func (n *Noise) Reseed(seed int64) {
	var p [256]int
	for i := range p {
		p[i] = i
	}

	state := uint64(seed)
	for i := 255; i > 0; i-- {
		// Константы LCG из Numerical Recipes
		state = state*6364136223846793005 + 1442695040888963407
		j := int(state % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}

	// Дублируем таблицу, чтобы не брать модуль при выборке
	for i := 0; i < 256; i++ {
		n.perm[i] = p[i]
		n.perm[i+256] = p[i]
	}
}

// Sample возвращает сглаженное значение шума в диапазоне [-1, 1].
// Для двумерной выборки z передается равным 0.
func (n *Noise) Sample(x, y, z float64) float64 {
	// Координаты ячейки решетки
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	zi := int(math.Floor(z)) & 255

	// Локальные координаты внутри ячейки
	xf := x - math.Floor(x)
	yf := y - math.Floor(y)
	zf := z - math.Floor(z)

	u := fade(xf)
	v := fade(yf)
	w := fade(zf)

	// Хеши восьми углов куба
	a := n.perm[xi] + yi
	aa := n.perm[a] + zi
	ab := n.perm[a+1] + zi
	b := n.perm[xi+1] + yi
	ba := n.perm[b] + zi
	bb := n.perm[b+1] + zi

	// Трилинейная интерполяция градиентов
	x1 := lerp(grad(n.perm[aa], xf, yf, zf), grad(n.perm[ba], xf-1, yf, zf), u)
	x2 := lerp(grad(n.perm[ab], xf, yf-1, zf), grad(n.perm[bb], xf-1, yf-1, zf), u)
	y1 := lerp(x1, x2, v)

	x1 = lerp(grad(n.perm[aa+1], xf, yf, zf-1), grad(n.perm[ba+1], xf-1, yf, zf-1), u)
	x2 = lerp(grad(n.perm[ab+1], xf, yf-1, zf-1), grad(n.perm[bb+1], xf-1, yf-1, zf-1), u)
	y2 := lerp(x1, x2, v)

	return lerp(y1, y2, w)
}

// Sample2D - выборка на плоскости x/z
func (n *Noise) Sample2D(x, z float64) float64 {
	return n.Sample(x, z, 0)
}

// fade - квинтическая кривая сглаживания 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// grad выбирает один из 12 градиентов по младшим битам хеша
func grad(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
