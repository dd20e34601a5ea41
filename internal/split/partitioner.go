// Package split は画像一覧を train/val/test に決定的に分割する。
//
// シャッフルは呼び出しごとに一度だけシードされた乱数生成器で入力のコピーに対して行う。
// 分割サイズは nTrain = floor(n*train), nVal = floor(n*val) とし、端数はすべて test に入る。
package split

import (
	"math/rand"

	"imagesplit/internal/dataset"
)

// Ratios は各分割の比率
type Ratios struct {
	Train float64
	Val   float64
	Test  float64
}

// Sizes は総数 n に対する各分割の件数を返す
// nTrain+nVal+nTest は常に n と一致する
func Sizes(n int, r Ratios) (nTrain, nVal, nTest int) {
	if n <= 0 {
		return 0, 0, 0
	}
	nTrain = clamp(int(float64(n)*r.Train), 0, n)
	nVal = clamp(int(float64(n)*r.Val), 0, n-nTrain)
	nTest = n - nTrain - nVal
	return nTrain, nVal, nTest
}

// Partition は images をシャッフルして連続区間で3分割する
// images 自体は変更しない
func Partition(images []dataset.ImageRecord, r Ratios, seed int64) dataset.Assignment {
	shuffled := make([]dataset.ImageRecord, len(images))
	copy(shuffled, images)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTrain, nVal, _ := Sizes(len(shuffled), r)
	return dataset.Assignment{
		Train: shuffled[:nTrain:nTrain],
		Val:   shuffled[nTrain : nTrain+nVal : nTrain+nVal],
		Test:  shuffled[nTrain+nVal:],
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
