package payment

// InstructionMap holds the buyer-facing payment steps per kind, shown on
// the invoice page. {{amount}} is substituted by the frontend.
var InstructionMap = map[Kind][]string{
	KindQris: {
		"Buka aplikasi e-wallet atau mobile banking yang mendukung QRIS",
		"Pilih menu Scan / Bayar",
		"Pindai kode QR yang ditampilkan pada halaman invoice",
		"Periksa nominal pembayaran {{amount}}",
		"Konfirmasi dan selesaikan pembayaran",
		"Tekan tombol konfirmasi setelah pembayaran berhasil",
	},

	KindMinimarket: {
		"Datang ke gerai minimarket terdekat",
		"Tunjukkan kode pembayaran pada halaman invoice kepada kasir",
		"Lakukan pembayaran sebesar {{amount}}",
		"Simpan struk sebagai bukti pembayaran",
		"Tekan tombol konfirmasi setelah pembayaran berhasil",
	},

	KindCash: {
		"Pembayaran tunai diproses langsung oleh admin",
		"Hubungi admin melalui WhatsApp untuk menyelesaikan pembayaran",
		"Siapkan uang tunai sebesar {{amount}}",
	},
}

// Instructions returns the steps for a kind, empty for unknown kinds.
func Instructions(kind Kind) []string {
	return InstructionMap[kind]
}
