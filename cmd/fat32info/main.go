package main

import (
	"fmt"
	"os"

	"github.com/aligator/gofat32"
	"github.com/spf13/afero"
)

// main mounts a FAT32 image, prints its geometry and lists all files.
func main() {
	argsWithoutProg := os.Args[1:]
	if len(argsWithoutProg) <= 0 {
		fmt.Println("Please provide an image filename.")
		os.Exit(1)
	}

	imageFile, err := os.Open(argsWithoutProg[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	defer imageFile.Close()

	disk, err := gofat32.NewFileDisk(imageFile)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	volume, err := gofat32.Mount(disk)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	info := volume.Info()
	fmt.Printf("Mounted volume '%v' (id %08X)\n\n", volume.Label(), info.VolumeID)
	fmt.Println("bytes per sector:   ", info.BytesPerSector)
	fmt.Println("sectors per cluster:", info.SectorsPerCluster)
	fmt.Println("reserved sectors:   ", info.ReservedSectors)
	fmt.Println("number of FATs:     ", info.NumFATs)
	fmt.Println("FAT size:           ", info.FATSize)
	fmt.Println("first FAT sector:   ", info.FirstFATSector)
	fmt.Println("first data sector:  ", info.FirstDataSector)
	fmt.Println("total sectors:      ", info.TotalSectors)
	fmt.Println("cluster count:      ", info.ClusterCount)
	fmt.Println("root cluster:       ", info.RootCluster)

	rootChain, err := volume.Chain(info.RootCluster)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println("root dir chain:     ", rootChain)

	fat := gofat32.NewFromVolume(volume)

	fmt.Println("\nFiles:")
	err = afero.Walk(fat, "", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			fmt.Println(err)
			return err
		}
		fmt.Println(path, info.IsDir(), info.Size(), info.ModTime())
		return nil
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
