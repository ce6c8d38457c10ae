package sphio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/anovak/gosph/geom"
	"github.com/anovak/gosph/quant"
)

// VtkOutput writes particles as a VTK unstructured grid of points, with
// one point-data array per selected quantity. The cells block is present
// but empty.
type VtkOutput struct {
	file *OutputFile
	ids  []quant.QuantityId
}

func NewVtkOutput(file *OutputFile, ids []quant.QuantityId) *VtkOutput {
	return &VtkOutput{file: file, ids: ids}
}

func vtkComponentCnt(kind quant.ValueKind) int {
	switch kind {
	case quant.KindIndex, quant.KindScalar:
		return 1
	case quant.KindVector:
		return 3
	case quant.KindTracelessTensor:
		return 5
	case quant.KindSymTensor:
		return 6
	case quant.KindTensor:
		return 9
	}
	panic(fmt.Sprintf("sphio: kind %v has no VTK representation", kind))
}

func (o *VtkOutput) Dump(storage *quant.Storage, stats Stats) (string, error) {
	path := o.file.Next(stats.RunTime)
	w, err := createStream(path)
	if err != nil {
		return "", err
	}
	if err := writeVtk(w, storage, o.ids); err != nil {
		w.Close()
		return "", err
	}
	return path, w.Close()
}

func writeVtk(w io.Writer, storage *quant.Storage, ids []quant.QuantityId) error {
	bw := bufio.NewWriter(w)
	n := storage.ParticleCnt()

	fmt.Fprintln(bw, `<?xml version="1.0"?>`)
	fmt.Fprintln(bw, `<VTKFile type="UnstructuredGrid" version="0.1" byte_order="LittleEndian">`)
	fmt.Fprintln(bw, ` <UnstructuredGrid>`)
	fmt.Fprintf(bw, `  <Piece NumberOfPoints="%d" NumberOfCells="0">`+"\n", n)

	fmt.Fprintln(bw, `   <Points>`)
	fmt.Fprintln(bw, `    <DataArray type="Float32" NumberOfComponents="3" format="ascii">`)
	for _, r := range storage.Vectors(quant.Position) {
		fmt.Fprintf(bw, "     %g %g %g\n", r[geom.X], r[geom.Y], r[geom.Z])
	}
	fmt.Fprintln(bw, `    </DataArray>`)
	fmt.Fprintln(bw, `   </Points>`)

	fmt.Fprintln(bw, `   <PointData>`)
	for _, id := range ids {
		if id == quant.Position || !storage.Has(id) {
			continue
		}
		q := storage.Quantity(id)
		fmt.Fprintf(bw,
			`    <DataArray type="Float32" Name="%s" NumberOfComponents="%d" format="ascii">`+"\n",
			id, vtkComponentCnt(q.Kind()))
		for i := 0; i < n; i++ {
			bw.WriteString("    ")
			for _, v := range vtkValues(q, i) {
				fmt.Fprintf(bw, " %g", v)
			}
			bw.WriteString("\n")
		}
		fmt.Fprintln(bw, `    </DataArray>`)
	}
	fmt.Fprintln(bw, `   </PointData>`)

	fmt.Fprintln(bw, `   <Cells>`)
	fmt.Fprintln(bw, `    <DataArray type="Int32" Name="connectivity" format="ascii"/>`)
	fmt.Fprintln(bw, `    <DataArray type="Int32" Name="offsets" format="ascii"/>`)
	fmt.Fprintln(bw, `    <DataArray type="UInt8" Name="types" format="ascii"/>`)
	fmt.Fprintln(bw, `   </Cells>`)

	fmt.Fprintln(bw, `  </Piece>`)
	fmt.Fprintln(bw, ` </UnstructuredGrid>`)
	fmt.Fprintln(bw, `</VTKFile>`)
	return bw.Flush()
}

func vtkValues(q *quant.Quantity, i int) []float64 {
	switch b := q.Values().(type) {
	case quant.IndexBuffer:
		return []float64{float64(b[i])}
	case quant.ScalarBuffer:
		return []float64{b[i]}
	case quant.VectorBuffer:
		return []float64{b[i][geom.X], b[i][geom.Y], b[i][geom.Z]}
	case quant.SymTensorBuffer:
		t := b[i]
		return t[:]
	case quant.TracelessTensorBuffer:
		t := b[i]
		return t[:]
	case quant.TensorBuffer:
		t := b[i]
		return t[:]
	}
	panic(fmt.Sprintf("sphio: kind %v has no VTK representation", q.Kind()))
}
